//go:build js && wasm
// +build js,wasm

package main

import (
	"syscall/js"
	"time"

	"github.com/eternalheli/apollodocs/pkg/export"
	"github.com/eternalheli/apollodocs/pkg/textstats"
)

// exportJSON builds the "Save As JSON" file for the open document.
// Returns {filename, data}.
func exportJSON(this js.Value, args []js.Value) (result interface{}) {
	defer recoverTo(&result, "exportJSON")
	if editor == nil {
		return errorResult("no open session")
	}
	snap := editor.Snapshot()
	content, err := editorWidget.Content()
	if err != nil {
		return errorResult("read content failed: " + err.Error())
	}
	data, err := export.JSON(export.Document{
		ID:      snap.DocID,
		Title:   snap.Title,
		Content: content,
		HTML:    editorWidget.HTML(),
		Text:    editorWidget.PlainText(),
	}, time.Now())
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(map[string]interface{}{
		"filename": export.SafeFilename(snap.Title, "json"),
		"data":     string(data),
		"stats":    textstats.Stats(editorWidget.PlainText()),
	})
}

// exportODT returns the ODT package as a Uint8Array.
func exportODT(this js.Value, args []js.Value) (result interface{}) {
	defer recoverTo(&result, "exportODT")
	if editor == nil {
		return errorResult("no open session")
	}
	data, err := export.ODT(editorWidget.PlainText())
	if err != nil {
		return errorResult("ODT export failed: " + err.Error())
	}

	// Create a Uint8Array in JS and copy bytes over
	jsArray := js.Global().Get("Uint8Array").New(len(data))
	js.CopyBytesToJS(jsArray, data)
	log.Debug("odt exported")
	return jsArray
}

// Args: [name string, ext string]
func safeFilename(this js.Value, args []js.Value) (result interface{}) {
	defer recoverTo(&result, "safeFilename")
	return export.SafeFilename(argString(args, 0), argString(args, 1))
}
