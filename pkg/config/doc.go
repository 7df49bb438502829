// Package config loads the imagehub configuration.
//
// Configuration is read from a TOML file and then overridden by IMAGEHUB_*
// environment variables, so secrets such as IMAGEHUB_API_KEY and
// IMAGEHUB_MONGO_URI never need to live in the file. The file is looked up
// at the path given with --config, then ~/.config/imagehub/config.toml, then
// ./imagehub.toml; a missing file leaves the defaults in place.
//
// A loaded [Config] is validated and treated as immutable: the CLI derives
// the constructor arguments of every component from it.
package config
