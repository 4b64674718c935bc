package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/eternalheli/apollodocs/internal/store"
	"github.com/eternalheli/apollodocs/pkg/archive"
	"github.com/eternalheli/apollodocs/pkg/doclist"
	"github.com/eternalheli/apollodocs/pkg/docstore"
	"github.com/eternalheli/apollodocs/pkg/export"
	"github.com/eternalheli/apollodocs/pkg/textstats"
)

var errUsage = errors.New("bad arguments, run with -h for usage")

type app struct {
	db    *store.SQLiteStore
	docs  *docstore.Store
	arch  *archive.Store
	home  *doclist.Home
	trash *doclist.Trash
	out   io.Writer
}

func newApp(db *store.SQLiteStore, log *zap.Logger, out io.Writer) *app {
	a := store.NewAdapter(db, log.Named("store"))
	docs := docstore.New(a, docstore.WithLogger(log))
	arch := archive.New(a, docs, archive.WithLogger(log))
	return &app{
		db:    db,
		docs:  docs,
		arch:  arch,
		home:  doclist.NewHome(docs, arch, log),
		trash: doclist.NewTrash(arch),
		out:   out,
	}
}

func (a *app) run(args []string) error {
	cmd, rest := args[0], args[1:]
	need := func(n int) error {
		if len(rest) < n {
			return fmt.Errorf("%s: %w", cmd, errUsage)
		}
		return nil
	}

	switch cmd {
	case "list":
		return a.list()
	case "create":
		doc := a.docs.Create(strings.Join(rest, " "))
		fmt.Fprintln(a.out, doc.ID)
		return nil
	case "rename":
		if err := need(2); err != nil {
			return err
		}
		a.home.Reload()
		if !a.home.Rename(rest[0], strings.Join(rest[1:], " ")) {
			return fmt.Errorf("rename %s: unknown id or unchanged title", rest[0])
		}
		return nil
	case "cat":
		if err := need(1); err != nil {
			return err
		}
		content, ok := a.docs.LoadContent(rest[0])
		if !ok {
			return fmt.Errorf("%s: no saved content", rest[0])
		}
		fmt.Fprintln(a.out, content)
		return nil
	case "stats":
		if err := need(1); err != nil {
			return err
		}
		return a.stats(rest[0])
	case "archive":
		if err := need(1); err != nil {
			return err
		}
		if !a.home.Archive(rest[0]) {
			return fmt.Errorf("archive %s: unknown id or storage write failed", rest[0])
		}
		return nil
	case "trash":
		return a.listTrash()
	case "restore":
		if err := need(1); err != nil {
			return err
		}
		doc, ok := a.arch.Restore(rest[0])
		if !ok {
			return fmt.Errorf("%s: not in trash or storage write failed", rest[0])
		}
		fmt.Fprintln(a.out, doc.ID)
		return nil
	case "delete":
		if err := need(1); err != nil {
			return err
		}
		if !a.arch.PermanentlyDelete(rest[0]) {
			return fmt.Errorf("%s: not in trash or storage write failed", rest[0])
		}
		return nil
	case "purge":
		fmt.Fprintf(a.out, "%d in trash\n", len(a.arch.PurgeExpired()))
		return nil
	case "odt", "json":
		if err := need(2); err != nil {
			return err
		}
		return a.export(cmd, rest[0], rest[1])
	case "backup":
		return a.backup(rest)
	case "import":
		if err := need(1); err != nil {
			return err
		}
		data, err := os.ReadFile(rest[0])
		if err != nil {
			return err
		}
		return a.db.Import(data)
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

func (a *app) list() error {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tUPDATED")
	for _, d := range a.home.Reload() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", d.ID, d.Title, time.UnixMilli(d.UpdatedAt).UTC().Format(time.RFC3339))
	}
	return w.Flush()
}

func (a *app) listTrash() error {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tREMAINING")
	a.trash.Reload()
	for _, c := range a.trash.Countdowns() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Title, c.Label)
	}
	return w.Flush()
}

func (a *app) stats(id string) error {
	content, ok := a.docs.LoadContent(id)
	if !ok {
		return fmt.Errorf("%s: no saved content", id)
	}
	s := textstats.Stats(plainText(content))
	fmt.Fprintf(a.out, "words %d\ncontent words %d\ncharacters %d\nreading %d min\n",
		s.Words, s.ContentWords, s.Characters, s.ReadingMinutes)
	return nil
}

func (a *app) export(format, id, path string) error {
	doc, ok := a.docs.Get(id)
	if !ok {
		return fmt.Errorf("%s: not a live document", id)
	}
	content, _ := a.docs.LoadContent(id)
	text := plainText(content)

	var (
		data []byte
		err  error
	)
	if format == "odt" {
		data, err = export.ODT(text)
	} else {
		data, err = export.JSON(export.Document{
			ID:      doc.ID,
			Title:   doc.Title,
			Content: content,
			Text:    text,
		}, time.Now())
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (a *app) backup(rest []string) error {
	data, err := a.db.Export()
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		_, err = a.out.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(rest[0], data, 0o600)
}

// plainText flattens a TipTap document to one line per block. Payloads
// that are not JSON are returned unchanged.
func plainText(content string) string {
	var root any
	if err := json.Unmarshal([]byte(content), &root); err != nil {
		return content
	}
	var lines []string
	var cur strings.Builder
	var walk func(n any)
	walk = func(n any) {
		node, ok := n.(map[string]any)
		if !ok {
			return
		}
		if t, ok := node["text"].(string); ok {
			cur.WriteString(t)
		}
		children, _ := node["content"].([]any)
		for _, c := range children {
			walk(c)
		}
		switch node["type"] {
		case "paragraph", "heading":
			lines = append(lines, cur.String())
			cur.Reset()
		}
	}
	walk(root)
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return strings.Join(lines, "\n")
}
