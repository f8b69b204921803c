// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

/*
Package config loads the audit analytics configuration.

Configuration is layered with koanf, later layers overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: $CONFIG_PATH, else the first of DefaultConfigPaths
 3. Environment variables listed in envMappings

Only mapped environment variables are read, so unrelated variables in the
process environment never leak into the configuration.

Example config.yaml:

	source:
	  base_url: https://api.example.com/api/v1
	  page_size: 500
	  requests_per_second: 5
	cache:
	  backend: badger
	  path: /data/audit-cache
	  ttl: 30m
	analytics:
	  timezone: Europe/Berlin
	warmer:
	  enabled: true
	  orgs: [org-a, org-b]

Environment equivalents: SOURCE_BASE_URL, SOURCE_PAGE_SIZE, CACHE_BACKEND,
CACHE_PATH, CACHE_TTL, ANALYTICS_TIMEZONE, WARMER_ENABLED, WARMER_ORGS
(comma separated) and so on.
*/
package config
