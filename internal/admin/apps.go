// ABOUTME: Navigation entries for the console, taken from the app registry.
// ABOUTME: Used when the console runs against the development backend.

package admin

import "github.com/pyconkr/console/plugins/core"

// RegistryApps lists every registered app and its resources.
func RegistryApps() []App {
	var apps []App
	for _, p := range core.All() {
		app := App{Name: p.Name()}
		for _, res := range p.Resources() {
			app.Resources = append(app.Resources, Resource{Slug: res.Slug, Name: res.Name})
		}
		apps = append(apps, app)
	}
	return apps
}
