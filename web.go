package geolocator

import (
	"embed"
	"io/fs"
	"log"
)

//go:embed web
var web embed.FS

// Web is the embedded fs.FS serving the findings panel.
var Web = func() fs.FS {
	sub, err := fs.Sub(web, "web")
	if err != nil {
		log.Fatal(err)
	}
	return sub
}()
