// Package config loads relpack build files.
//
// A build file lists the map documents to compile and says where and how the
// artifacts are written:
//
//	files:
//	  - path: Maps/AnimalColor.csv
//	    file_type: Map
//	    file_format: Csv
//	    type_name: colors.AnimalColor
//	  - path: Maps/Access/*.csv
//	    file_type: Map
//	    file_format: Csv
//	    type_name: access.*
//	output:
//	  format: go
//	  go:
//	    ordinals: true
//	store:
//	  kind: local
//	  path: gen
//	build:
//	  workers: 4
//	  memory_limit: 64MiB
//
// Only entries with file_type Map and file_format Csv (case-insensitive) and a
// non-empty type_name are compiled; everything else is ignored. A type_name
// ending in ".*" turns path into a glob and names each match after its file
// stem.
package config
