package main

import (
	"fmt"
	"os"

	"refhub/src/internal/cache"
	"refhub/src/internal/record"
	"refhub/src/internal/stringsx"
	"refhub/src/internal/webdav"
)

// passwordEnv holds the WebDAV app password; it is never written to disk.
const passwordEnv = "REFHUB_WEBDAV_PASSWORD"

func openCache() (*cache.Cache, error) {
	return cache.Open(cacheDir)
}

// loadCollection opens the cache and reads the active library.
func loadCollection() (*cache.Cache, []record.Record, error) {
	c, err := openCache()
	if err != nil {
		return nil, nil, err
	}
	records, err := c.LoadLibrary(libraryName)
	if err != nil {
		return nil, nil, err
	}
	return c, records, nil
}

// remoteClient builds a client from the saved remote config plus the password
// from the environment. The remote filename is returned alongside.
func remoteClient(c *cache.Cache) (*webdav.Client, string, error) {
	cfg, err := c.LoadRemoteConfig()
	if err != nil {
		return nil, "", err
	}
	if cfg == nil || cfg.URL == "" {
		return nil, "", fmt.Errorf("no remote configured; run 'refhub remote set' first")
	}
	name := cfg.Filename
	if name == "" {
		name = cache.DefaultLibrary()
	}
	return webdav.New(cfg.URL, cfg.Username, os.Getenv(passwordEnv), cfg.Insecure), name, nil
}

var entryHeaders = []string{"KEY", "TITLE", "AUTHOR", "YEAR", "VENUE"}

func entryRows(records []record.Record) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		venue := stringsx.FirstNonEmpty(r.Get(record.FieldJournal), r.Get(record.FieldBooktitle))
		rows = append(rows, []string{
			r.ID,
			stringsx.Truncate(stringsx.StripBraces(r.Title()), 60),
			stringsx.Truncate(stringsx.StripBraces(r.Get(record.FieldAuthor)), 40),
			r.Get(record.FieldYear),
			stringsx.Truncate(stringsx.StripBraces(venue), 30),
		})
	}
	return rows
}
