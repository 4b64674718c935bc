//go:build js && wasm
// +build js,wasm

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"syscall/js"

	"go.uber.org/zap"

	"github.com/eternalheli/apollodocs/pkg/logger"
	"github.com/eternalheli/apollodocs/pkg/session"
)

// jsWidget adapts the page's editor object. It must expose setContent,
// getContent, insertContent, getText and getHTML.
type jsWidget struct {
	obj js.Value
}

// call invokes method, converting a thrown JS exception into an error.
func (w *jsWidget) call(method string, args ...interface{}) (v js.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("widget.%s: %v", method, r)
		}
	}()
	fn := w.obj.Get(method)
	if fn.Type() != js.TypeFunction {
		return js.Undefined(), errors.New("widget." + method + " is not a function")
	}
	return w.obj.Call(method, args...), nil
}

func (w *jsWidget) SetContent(payload string) error {
	_, err := w.call("setContent", payload)
	return err
}

func (w *jsWidget) Content() (string, error) {
	v, err := w.call("getContent")
	if err != nil {
		return "", err
	}
	if v.Type() != js.TypeString {
		return "", errors.New("widget.getContent did not return a string")
	}
	return v.String(), nil
}

func (w *jsWidget) InsertContent(payload string) error {
	_, err := w.call("insertContent", payload)
	return err
}

func (w *jsWidget) PlainText() string {
	v, err := w.call("getText")
	if err != nil || v.Type() != js.TypeString {
		return ""
	}
	return v.String()
}

func (w *jsWidget) HTML() string {
	v, err := w.call("getHTML")
	if err != nil || v.Type() != js.TypeString {
		return ""
	}
	return v.String()
}

// historyNav rewrites the address bar with history.replaceState.
type historyNav struct{}

func (historyNav) Replace(url string) {
	defer func() { _ = recover() }()
	js.Global().Get("history").Call("replaceState", js.Null(), "", url)
}

// sessionOpen starts an editor session, closing any previous one.
// Args: [id string, widget object, onState function(snapshotJSON)]
func sessionOpen(this js.Value, args []js.Value) (result interface{}) {
	defer recoverTo(&result, "sessionOpen")
	if len(args) < 2 {
		return errorResult("sessionOpen requires 2 args: id, widget")
	}
	if !ready() {
		return errorResult("not initialized")
	}
	if editor != nil {
		_ = editor.Close()
		editor = nil
	}

	opts := []session.Option{
		session.WithLogger(logger.Log),
		session.WithDebounce(cfg.DebounceInterval),
		session.WithHydrateTimeout(cfg.HydrateTimeout),
		session.WithNavigator(historyNav{}),
		session.WithPrefs(userPrefs),
	}
	if len(args) > 2 && args[2].Type() == js.TypeFunction {
		onState := args[2]
		opts = append(opts, session.WithObserver(func(s session.Snapshot) {
			data, err := json.Marshal(s)
			if err != nil {
				return
			}
			defer func() { _ = recover() }()
			onState.Invoke(string(data))
		}))
	}

	editorWidget = &jsWidget{obj: args[1]}
	editor = session.New(docs, editorWidget, opts...)
	meta, err := editor.Open(argString(args, 0))
	if err != nil {
		// The watchdog still moves a failed hydration to Ready.
		log.Warn("session open", zap.String("id", meta.ID), zap.Error(err))
	}
	return jsonResult(map[string]interface{}{
		"doc":      meta,
		"snapshot": editor.Snapshot(),
	})
}

// sessionEdit is wired to the widget's change event.
// Args: [source "user"|"api"]
func sessionEdit(this js.Value, args []js.Value) (result interface{}) {
	defer recoverTo(&result, "sessionEdit")
	if editor == nil {
		return nil
	}
	source := session.SourceAPI
	if argString(args, 0) == "user" {
		source = session.SourceUser
	}
	editor.HandleEdit(source)
	return nil
}

func sessionSave(this js.Value, args []js.Value) (result interface{}) {
	defer recoverTo(&result, "sessionSave")
	if editor == nil {
		return errorResult("no open session")
	}
	if err := editor.Save(); err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(editor.Snapshot())
}

// Args: [title string]
func sessionTitle(this js.Value, args []js.Value) (result interface{}) {
	defer recoverTo(&result, "sessionTitle")
	if editor == nil {
		return errorResult("no open session")
	}
	return jsonResult(map[string]bool{"saved": editor.CommitTitle(argString(args, 0))})
}

func sessionReload(this js.Value, args []js.Value) (result interface{}) {
	defer recoverTo(&result, "sessionReload")
	if editor == nil {
		return errorResult("no open session")
	}
	if err := editor.Reload(); err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(editor.Snapshot())
}

func sessionWordCount(this js.Value, args []js.Value) (result interface{}) {
	defer recoverTo(&result, "sessionWordCount")
	if editor == nil {
		return errorResult("no open session")
	}
	return jsonResult(map[string]int{"words": editor.WordCount()})
}

// sessionClose drops any pending autosave.
func sessionClose(this js.Value, args []js.Value) (result interface{}) {
	defer recoverTo(&result, "sessionClose")
	if editor == nil {
		return successResult("no open session")
	}
	_ = editor.Close()
	editor, editorWidget = nil, nil
	return successResult("closed")
}
