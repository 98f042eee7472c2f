// Package confloader provides configuration loading for CowKit.
//
// It layers Koanf providers so that configuration resolves with the
// priority Env > YAML file > Defaults. The bench harness seeds defaults
// through LoadMap and unmarshals into its config struct via koanf tags.
package confloader
