// Package config loads application configuration and the product vocabulary.
//
// # Configuration Sources
//
// Values are layered, later sources winning:
//
//	1. Default()
//	2. A YAML file (explicit path, TROOP_CONFIG, config.yaml or configs/config.yaml)
//	3. Environment variables
//
// # Environment Variables
//
// Variables follow the pattern TROOP_<SECTION>_<FIELD>:
//
//	TROOP_SERVER_PORT=8080
//	TROOP_LOGGING_LEVEL=debug
//	TROOP_LIMITS_MAX_ROWS=20000
//	TROOP_VOCABULARY_FILE=/etc/troop/vocabulary.yaml
//	TROOP_RENDER_PDF_ENABLED=true
//
// # Vocabulary
//
// The product vocabulary is ordered data: declaration order decides which
// product claims a contested column and breaks ties in troop totals. A YAML
// vocabulary replaces the built-in table wholesale:
//
//	products:
//	  - name: Trefoils
//	    aliases: [Trefoils, Shortbread]
//	labels:
//	  accepted_channels: [girl, in-person, booth]
//
// Label lists left out of the file keep their defaults.
package config
