// Package config defines the application's configuration structure and the
// loading logic that populates it from files and environment variables.
// Configuration is constructed once at startup and passed explicitly to the
// components that need it; there is no global configuration singleton.
package config
