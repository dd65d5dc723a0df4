package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/yungbote/codemaster-backend/internal/app"
	"github.com/yungbote/codemaster-backend/internal/services"
)

type fileList []string

func (l *fileList) String() string { return strings.Join(*l, ",") }
func (l *fileList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v != "" {
		*l = append(*l, v)
	}
	return nil
}

func main() {
	var files fileList
	var dryRun bool
	flag.Var(&files, "file", "JSON seed file holding an array of {type, lang, key, data} rows (repeatable)")
	flag.BoolVar(&dryRun, "dry-run", false, "print what would be written without touching the database")
	flag.Parse()

	var items []services.SeedItem
	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("read %s: %v\n", path, err)
			os.Exit(1)
		}
		var batch []services.SeedItem
		if err := json.Unmarshal(raw, &batch); err != nil {
			fmt.Printf("decode %s: %v\n", path, err)
			os.Exit(1)
		}
		items = append(items, batch...)
	}

	if dryRun {
		for _, it := range items {
			fmt.Printf("type=%s lang=%s key=%s bytes=%d\n", it.Type, it.Lang, it.Key, len(it.Data))
		}
		fmt.Printf("dry-run: %d rows, registry refreshed with built-in languages\n", len(items))
		return
	}

	ctx := context.Background()
	application, err := app.New(ctx)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	n, err := application.Services.Content.Seed(ctx, items)
	if err != nil {
		application.Log.Error("seed failed", "error", err)
		application.Close()
		os.Exit(1)
	}
	application.Log.Info("seed complete", "rows", n)
}
