// Package config loads, validates, and normalizes the uniqvid configuration.
//
// Configuration comes from a TOML file with repository defaults filled in for
// anything unset. The operational knobs that bound resource usage (worker
// count, copy limit, inbound size cap, output dimension cap, encoder threads
// and preset) can additionally be overridden through environment variables so
// deployments can tune them without editing the config file.
package config
