// Package factory builds pluggable modules, such as producers and metrics
// sinks, from configuration. A module is named by a type string and carries
// a map of raw settings that its factory decodes into a typed struct:
//
//	reg := factory.NewRegistry[charging.Producer]()
//	_ = reg.Register("thermal", func(conf map[string]any) (charging.Producer, error) {
//	    var c struct {
//	        Name string `json:"name"`
//	    }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return newThermal(c.Name), nil
//	})
//	p, err := reg.Create(factory.ModuleConfig{Type: "thermal", Conf: map[string]any{"name": "aft"}})
package factory
