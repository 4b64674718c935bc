//go:build js && wasm
// +build js,wasm

package main

import (
	"encoding/json"
	"fmt"
	"syscall/js"

	"go.uber.org/zap"

	"github.com/eternalheli/apollodocs/internal/config"
	"github.com/eternalheli/apollodocs/internal/store"
	"github.com/eternalheli/apollodocs/pkg/archive"
	"github.com/eternalheli/apollodocs/pkg/doclist"
	"github.com/eternalheli/apollodocs/pkg/docstore"
	"github.com/eternalheli/apollodocs/pkg/logger"
	"github.com/eternalheli/apollodocs/pkg/prefs"
	"github.com/eternalheli/apollodocs/pkg/session"
)

// Version info
const Version = "1.0.0"

// Global state
var cfg = config.Default()
var local *store.Adapter      // window.localStorage
var sessionKV *store.Adapter  // window.sessionStorage
var docs *docstore.Store      // Index & content
var trash *archive.Store      // Trash catalog
var home *doclist.Home        // Homepage controller
var trashPage *doclist.Trash  // Archive page controller
var userPrefs *prefs.Prefs    // Theme, views, word count, advisory
var editor *session.Session   // Currently open editor, nil when none
var editorWidget *jsWidget    // Widget bound to editor
var log = zap.NewNop()

func main() {
	// Register exports
	js.Global().Set("ApolloDocs", js.ValueOf(map[string]interface{}{
		"version": js.FuncOf(getVersion),
		"init":    js.FuncOf(initialize),
		// Homepage
		"docsReload":  js.FuncOf(docsReload),
		"docsCreate":  js.FuncOf(docsCreate),
		"docsRename":  js.FuncOf(docsRename),
		"docsArchive": js.FuncOf(docsArchive),
		// Archive page
		"trashReload":     js.FuncOf(trashReload),
		"trashRestore":    js.FuncOf(trashRestore),
		"trashDelete":     js.FuncOf(trashDelete),
		"trashCountdowns": js.FuncOf(trashCountdowns),
		// Preferences
		"prefsGet":       js.FuncOf(prefsGet),
		"prefsSet":       js.FuncOf(prefsSet),
		"privateWarn":    js.FuncOf(privateWarn),
		"privateDismiss": js.FuncOf(privateDismiss),
		// Editor session
		"sessionOpen":      js.FuncOf(sessionOpen),
		"sessionEdit":      js.FuncOf(sessionEdit),
		"sessionSave":      js.FuncOf(sessionSave),
		"sessionTitle":     js.FuncOf(sessionTitle),
		"sessionReload":    js.FuncOf(sessionReload),
		"sessionWordCount": js.FuncOf(sessionWordCount),
		"sessionClose":     js.FuncOf(sessionClose),
		// Export
		"exportJSON":   js.FuncOf(exportJSON),
		"exportODT":    js.FuncOf(exportODT),
		"safeFilename": js.FuncOf(safeFilename),
	}))

	fmt.Println("[ApolloDocs] WASM Ready v" + Version)

	// Keep running
	select {}
}

func getVersion(this js.Value, args []js.Value) interface{} {
	return Version
}

// initialize wires storage and controllers.
// Args: [configJSON string] (optional)
func initialize(this js.Value, args []js.Value) (result interface{}) {
	defer recoverTo(&result, "init")

	var raw []byte
	if len(args) > 0 && args[0].Type() == js.TypeString {
		raw = []byte(args[0].String())
	}
	c, err := config.FromJSON(raw)
	if err != nil {
		return errorResult("invalid config: " + err.Error())
	}
	if err := c.Validate(); err != nil {
		return errorResult("invalid config: " + err.Error())
	}
	cfg = c

	logger.Init(cfg.LogLevel)
	log = logger.Named("bridge")

	local = store.NewAdapter(store.NewLocalStorage("localStorage"), logger.Named("store"))
	sessionKV = store.NewAdapter(store.NewLocalStorage("sessionStorage"), logger.Named("session-store"))

	docs = docstore.New(local, docstore.WithLogger(logger.Log))
	trash = archive.New(local, docs, archive.WithLogger(logger.Log))
	home = doclist.NewHome(docs, trash, logger.Log)
	trashPage = doclist.NewTrash(trash)
	userPrefs = prefs.New(local, sessionKV)

	log.Info("initialized",
		zap.Duration("debounce", cfg.DebounceInterval),
		zap.Duration("hydrate_timeout", cfg.HydrateTimeout),
		zap.Bool("storage_ok", local.Probe()))
	return successResult("initialized")
}

// Helper: Create error result
func errorResult(msg string) interface{} {
	result := map[string]interface{}{
		"error": msg,
	}
	jsonBytes, _ := json.Marshal(result)
	return string(jsonBytes)
}

// Helper: Create success result
func successResult(msg string) interface{} {
	result := map[string]interface{}{
		"success": msg,
	}
	jsonBytes, _ := json.Marshal(result)
	return string(jsonBytes)
}

// Helper: Marshal a value as the result
func jsonResult(v interface{}) interface{} {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return errorResult("encode failed: " + err.Error())
	}
	return string(jsonBytes)
}

// recoverTo turns a panic in an exported function into an error result.
func recoverTo(result *interface{}, name string) {
	if r := recover(); r != nil {
		log.Error("bridge call panicked", zap.String("fn", name), zap.Any("panic", r))
		*result = errorResult(fmt.Sprintf("%s failed: %v", name, r))
	}
}

func ready() bool {
	return docs != nil
}

func argString(args []js.Value, i int) string {
	if len(args) <= i || args[i].Type() != js.TypeString {
		return ""
	}
	return args[i].String()
}
