package navigation

import "strings"

// Item is a link in the shared site menu.
type Item struct {
	Label  string `json:"label"`
	Path   string `json:"path"`
	Active bool   `json:"active"`
}

var mainMenu = []Item{
	{Label: "Home", Path: "/"},
	{Label: "About", Path: "/about"},
	{Label: "Projects", Path: "/projects"},
	{Label: "Services", Path: "/services"},
	{Label: "Blog", Path: "/blog"},
	{Label: "Contact", Path: "/contact"},
}

// Main returns the site menu with the entry owning currentPath marked active.
// Nested paths such as /blog/some-post activate their section.
func Main(currentPath string) []Item {
	current := "/" + strings.Trim(currentPath, "/")

	items := make([]Item, len(mainMenu))
	copy(items, mainMenu)
	for i := range items {
		path := items[i].Path
		if path == "/" {
			items[i].Active = current == "/"
			continue
		}
		items[i].Active = current == path || strings.HasPrefix(current, path+"/")
	}
	return items
}
