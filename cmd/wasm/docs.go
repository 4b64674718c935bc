//go:build js && wasm
// +build js,wasm

package main

import (
	"syscall/js"

	"github.com/eternalheli/apollodocs/pkg/prefs"
)

// =============================================================================
// Homepage
// =============================================================================

func docsReload(this js.Value, args []js.Value) (result interface{}) {
	defer recoverTo(&result, "docsReload")
	if !ready() {
		return errorResult("not initialized")
	}
	return jsonResult(home.Reload())
}

// docsCreate returns {doc, url}.
func docsCreate(this js.Value, args []js.Value) (result interface{}) {
	defer recoverTo(&result, "docsCreate")
	if !ready() {
		return errorResult("not initialized")
	}
	doc, url := home.CreateAndOpen()
	return jsonResult(map[string]interface{}{"doc": doc, "url": url})
}

// Args: [id string, title string]
func docsRename(this js.Value, args []js.Value) (result interface{}) {
	defer recoverTo(&result, "docsRename")
	if len(args) < 2 {
		return errorResult("docsRename requires 2 args: id, title")
	}
	if !ready() {
		return errorResult("not initialized")
	}
	return jsonResult(map[string]bool{"renamed": home.Rename(argString(args, 0), argString(args, 1))})
}

// Args: [id string]
func docsArchive(this js.Value, args []js.Value) (result interface{}) {
	defer recoverTo(&result, "docsArchive")
	if len(args) < 1 {
		return errorResult("docsArchive requires 1 arg: id")
	}
	if !ready() {
		return errorResult("not initialized")
	}
	return jsonResult(map[string]bool{"archived": home.Archive(argString(args, 0))})
}

// =============================================================================
// Archive page
// =============================================================================

func trashReload(this js.Value, args []js.Value) (result interface{}) {
	defer recoverTo(&result, "trashReload")
	if !ready() {
		return errorResult("not initialized")
	}
	return jsonResult(trashPage.Reload())
}

// Args: [id string]
func trashRestore(this js.Value, args []js.Value) (result interface{}) {
	defer recoverTo(&result, "trashRestore")
	if len(args) < 1 {
		return errorResult("trashRestore requires 1 arg: id")
	}
	if !ready() {
		return errorResult("not initialized")
	}
	doc, ok := trashPage.Restore(argString(args, 0))
	if !ok {
		return errorResult("not found")
	}
	return jsonResult(doc)
}

// Args: [id string]
func trashDelete(this js.Value, args []js.Value) (result interface{}) {
	defer recoverTo(&result, "trashDelete")
	if len(args) < 1 {
		return errorResult("trashDelete requires 1 arg: id")
	}
	if !ready() {
		return errorResult("not initialized")
	}
	return jsonResult(map[string]bool{"deleted": trashPage.Delete(argString(args, 0))})
}

// trashCountdowns is polled once per second by the archive page.
func trashCountdowns(this js.Value, args []js.Value) (result interface{}) {
	defer recoverTo(&result, "trashCountdowns")
	if !ready() {
		return errorResult("not initialized")
	}
	return jsonResult(trashPage.Countdowns())
}

// =============================================================================
// Preferences
// =============================================================================

// prefsGet returns every preference.
// Args: [prefersLight bool] (optional)
func prefsGet(this js.Value, args []js.Value) (result interface{}) {
	defer recoverTo(&result, "prefsGet")
	if !ready() {
		return errorResult("not initialized")
	}
	prefersLight := len(args) > 0 && args[0].Type() == js.TypeBoolean && args[0].Bool()
	return jsonResult(map[string]interface{}{
		"theme":         userPrefs.LoadTheme(prefersLight),
		"docsView":      userPrefs.DocsView(),
		"changelogView": userPrefs.ChangelogView(),
		"wordCount":     userPrefs.WordCountEnabled(),
	})
}

// prefsSet stores one preference.
// Args: [name string, value string|bool]
func prefsSet(this js.Value, args []js.Value) (result interface{}) {
	defer recoverTo(&result, "prefsSet")
	if len(args) < 2 {
		return errorResult("prefsSet requires 2 args: name, value")
	}
	if !ready() {
		return errorResult("not initialized")
	}
	name := argString(args, 0)
	switch name {
	case "theme":
		userPrefs.StoreTheme(prefs.Theme(argString(args, 1)))
	case "docsView":
		userPrefs.StoreDocsView(prefs.View(argString(args, 1)))
	case "changelogView":
		userPrefs.StoreChangelogView(prefs.View(argString(args, 1)))
	case "wordCount":
		on := args[1].Type() == js.TypeBoolean && args[1].Bool()
		if editor != nil {
			editor.SetWordCountEnabled(on)
		} else {
			userPrefs.StoreWordCount(on)
		}
	default:
		return errorResult("unknown preference: " + name)
	}
	return successResult(name)
}

func privateWarn(this js.Value, args []js.Value) (result interface{}) {
	defer recoverTo(&result, "privateWarn")
	if !ready() {
		return errorResult("not initialized")
	}
	return jsonResult(map[string]bool{"show": userPrefs.ShouldWarnPrivate()})
}

func privateDismiss(this js.Value, args []js.Value) (result interface{}) {
	defer recoverTo(&result, "privateDismiss")
	if !ready() {
		return errorResult("not initialized")
	}
	userPrefs.DismissPrivateWarn()
	return successResult("dismissed")
}
