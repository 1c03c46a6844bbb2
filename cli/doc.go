// Package cli contains the command line interface for derap.
//
// # Usage
//
// Every command runs against the build output of a project, a binarized
// config, or a model config:
//
//	derap classes --only=main
//	derap paths --format=json
//	derap gear --author="Your Name"
//	derap dump json --indent=2 addons/main/config.bin
//	derap bones -k OFP2_ManSkeleton model.cfg.bin
//	derap prop -s CfgVehicles Car model config.bin
//
// # Configuration
//
// Flag values are resolved in this order, first match wins:
//
//   - the command line
//   - DERAP_* environment variables, for example DERAP_LOG_LEVEL
//   - .env in the working directory, then .env in the configuration directory
//   - config.yaml in the configuration directory
//   - config.json in the configuration directory
//   - the flag default
//
// Nested keys in the YAML file are joined with "-", so
//
//	log:
//	  level: debug
//
// sets --log-level. A file that does not parse is logged and ignored.
// The init command writes the current global flag values to config.yaml.
//
// The environment variable prefix and the configuration and cache directory
// names follow the name of the executable.
//
// # Logging Options
//
//   - --log-level: minimum log level (trace, debug, info, warn, error)
//   - --log-format: log output format (text, json)
//   - --log-time-layout: timestamp layout name, Go layout, or none
//   - --log-caller: include the caller in log output
//   - --log-pretty: colorize text output on a terminal
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o derap .
//
// It adds:
//
//   - --pprof-mode: profile to record (allocs, block, clock, cpu,
//     goroutine, heap, mem, mutex, thread, trace)
//   - --pprof-dir: profile output directory, below the cache directory by
//     default
package cli
