package platform

import "gamecal/internal/ident"

type definition struct {
	name      string
	shortName string
	aliases   []string
}

var defaultPlatforms = []definition{
	{"Playstation 5", "PS5", []string{"PS5", "Playstation5", "PlayStation 5"}},
	{"Playstation 4", "PS4", []string{"PS4", "Playstation4", "PlayStation 4"}},
	{"Playstation VR", "PSVR", []string{"PSVR", "PS VR", "PlayStation VR"}},
	{"Playstation VR 2", "PSVR2", []string{"PSVR 2", "PlayStation VR 2", "PlayStation VR2"}},
	{"Nintendo Switch", "NS", []string{"Switch", "NS"}},
	{"Xbox Series X/S", "XBS", []string{"XSX", "Xbox Series S", "Xbox Series X", "XSS", "XSX/S", "Xbox Series X|S"}},
	{"Xbox One", "XBO", []string{"XBO"}},
	{"Google Stadia", "GS", []string{"Stadia"}},
	{"Android", "Droid", []string{"Droid"}},
	{"iOS", "iOS", nil},
	{"Oculus Quest", "OQ", []string{"Quest 3", "Quest 2", "Quest"}},
	{"Microsoft Windows", "Win", []string{"Win", "PC", "Windows"}},
	{"Linux", "Lin", []string{"Lin"}},
	{"Macintosh", "Mac", []string{"Mac"}},
}

// NewDefaultCatalog returns the built-in platform catalog.
func NewDefaultCatalog(seq *ident.Sequence) *Catalog {
	c := NewCatalog(seq)
	for _, def := range defaultPlatforms {
		c.Register(def.name, def.shortName, def.aliases...)
	}
	return c
}
