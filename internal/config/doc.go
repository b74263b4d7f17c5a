// Package config provides configuration parsing for sprout.
//
// Configuration lives in sprout.json or sprout.toml next to the scenarios
// it drives. Both formats decode into the same Config; fields left out keep
// the defaults from New.
//
// # Configuration File Structure
//
//	{
//	  "name": "todo-list",
//	  "devtools": {
//	    "addr": "127.0.0.1:7070",
//	    "wsPath": "/ws",
//	    "buffer": 256
//	  },
//	  "metrics": {"enabled": true, "namespace": "sprout"},
//	  "tracing": {"enabled": false, "tracerName": "sprout"},
//	  "log": {"level": "info", "format": "text"},
//	  "archive": {"kind": "disk", "dir": ".sprout/traces"}
//	}
//
// The same file in TOML:
//
//	name = "todo-list"
//
//	[devtools]
//	addr = "127.0.0.1:7070"
//
//	[archive]
//	kind = "s3"
//	bucket = "sprout-traces"
//	region = "eu-west-1"
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Devtools:", cfg.Devtools.Addr)
package config
