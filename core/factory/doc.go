// Package factory provides a small generic registry used to instantiate
// pluggable modules (metrics sinks, journal stores) from configuration.
// Modules are described by a type string and a map of raw settings that the
// factory decodes into its own typed struct.
//
//	reg := factory.NewRegistry[journal.Store]()
//	_ = reg.Register("jsonl", func(conf map[string]any) (journal.Store, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return journal.NewJSONLStore(c.Path)
//	})
//	s, err := reg.Create(factory.ModuleConfig{Type: "jsonl", Conf: map[string]any{"path": "rounds.jsonl"}})
package factory
