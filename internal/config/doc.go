// Package config provides configuration parsing for rcsg projects.
//
// The configuration is stored in rcsg.json at the project root. The file
// is optional: without it every setting takes its default and the working
// directory is the project root.
//
// # Configuration File Structure
//
//	{
//	  "source": "web",
//	  "output": "dist",
//	  "templateExt": ".rc",
//	  "compiler": {
//	    "command": "node",
//	    "mode": "require",
//	    "trimWhitespace": false,
//	    "forceJSExtension": true,
//	    "timeout": "30s"
//	  },
//	  "executor": {"command": "node", "timeout": "30s"},
//	  "render": {"escapeAttributes": false},
//	  "dev": {"port": 3000, "host": "localhost", "hotReload": true},
//	  "publish": {"bucket": "my-site", "prefix": "www/", "region": "us-east-1"},
//	  "metrics": {"namespace": "rcsg", "textfile": ""}
//	}
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Output:", cfg.OutputPath())
package config
