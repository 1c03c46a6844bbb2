// Package source loads the built addons of a mod from disk.
//
// A build directory holds one subdirectory per addon under addons/. Each
// addon directory is the unpacked content of one archive: its compiled
// config.bin, its data files, and optionally a $PBOPREFIX$ file naming the
// virtual path the archive is mounted at.
//
//	.hemttout/build/
//	└── addons/
//	    ├── main/
//	    │   ├── $PBOPREFIX$      x\mod\addons\main
//	    │   ├── config.bin
//	    │   └── data/logo.paa
//	    └── common/
//	        └── ...
//
// Only configs are read into memory; other files are listed by name.
package source
