package extension

// RegisterBuiltins adds the extensions shipped with sitegen to reg.
func RegisterBuiltins(reg *Registry) error {
	builtins := map[string]Factory{
		"sitemap":   NewSitemap,
		"feed":      NewFeed,
		"redirects": NewRedirects,
	}
	for name, factory := range builtins {
		if err := reg.Register(name, factory); err != nil {
			return err
		}
	}
	return nil
}
