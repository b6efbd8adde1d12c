package templates

import (
	"embed"
	"html/template"
)

//go:embed *.html
var htmlFiles embed.FS

var Home,
	Spin,
	Recipe *template.Template

// Init parses the embedded pages. Asset paths are content hashed so they
// can be cached forever.
func Init(styleAssetPath, scriptAssetPath string) error {
	funcs := template.FuncMap{
		"StyleAssetPath":  func() string { return styleAssetPath },
		"ScriptAssetPath": func() string { return scriptAssetPath },
	}
	tmpls, err := template.New("all").Funcs(funcs).ParseFS(htmlFiles, "*.html")
	if err != nil {
		return err
	}
	Home = ensure(tmpls, "home.html")
	Spin = ensure(tmpls, "spinner.html")
	Recipe = ensure(tmpls, "recipe.html")
	return nil
}

func ensure(templates *template.Template, name string) *template.Template {
	tmpl := templates.Lookup(name)
	if tmpl == nil {
		panic("template " + name + " not found")
	}
	return tmpl
}
