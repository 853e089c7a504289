// Package config provides configuration parsing for lattice projects.
//
// The configuration is stored in lattice.json at the project root.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "name": "counter",
//	  "server": {
//	    "host": "0.0.0.0",
//	    "port": 3000,
//	    "live": true
//	  },
//	  "render": {
//	    "title": "Counter",
//	    "mountId": "app",
//	    "styleSheets": ["/app.css"]
//	  },
//	  "export": {
//	    "target": "s3",
//	    "bucket": "my-site",
//	    "region": "eu-west-1"
//	  },
//	  "metrics": { "enabled": true },
//	  "tracing": { "enabled": false },
//	  "log": { "format": "json", "level": "info" }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
