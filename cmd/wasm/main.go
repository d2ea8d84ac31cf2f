//go:build js && wasm

package main

import (
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/mokurodb/mokurodb/internal/store"
	"github.com/mokurodb/mokurodb/pkg/library"
	"github.com/mokurodb/mokurodb/pkg/search"
)

// Version info
const Version = "0.2.1"

// Global state
var sqlStore *store.SQLiteStore
var svc *library.Service

func main() {
	fmt.Println("[mokurodb] WASM Ready v" + Version)

	js.Global().Set("MokuroDB", js.ValueOf(map[string]interface{}{
		"version": js.FuncOf(getVersion),
		"init":    js.FuncOf(storeInit),
		// Library API
		"importVolume":  js.FuncOf(importVolume),
		"exportVolume":  js.FuncOf(exportVolume),
		"deleteVolume":  js.FuncOf(deleteVolume),
		"listVolumes":   js.FuncOf(listVolumes),
		"getVolume":     js.FuncOf(getVolume),
		"updateVolume":  js.FuncOf(updateVolume),
		"getPage":       js.FuncOf(getPage),
		"getPageOcr":    js.FuncOf(getPageOcr),
		"updatePageOcr": js.FuncOf(updatePageOcr),
		// Search API
		"searchOcr": js.FuncOf(searchOcr),
	}))

	select {}
}

func getVersion(this js.Value, args []js.Value) interface{} {
	return Version
}

// storeInit opens the in-memory store and the library service.
func storeInit(this js.Value, args []js.Value) interface{} {
	var err error
	sqlStore, err = store.NewSQLiteStore()
	if err != nil {
		return errorResult("failed to initialize SQLite store: " + err.Error())
	}
	svc = library.New(sqlStore, nil)
	return successResult("store initialized")
}

// importVolume decodes an archive and stores it.
// Args: [name string, bytes Uint8Array]
func importVolume(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("importVolume requires 2 args: name, bytes")
	}
	if svc == nil {
		return errorResult("store not initialized")
	}

	data := make([]byte, args[1].Get("length").Int())
	js.CopyBytesToGo(data, args[1])

	v, cover, err := svc.Import(args[0].String(), data)
	if err != nil {
		return errorResult(err.Error())
	}
	// The JS side re-fetches pages through getPage; the cover handle
	// has no display slot here.
	cover.Release()

	return jsonResult(map[string]interface{}{
		"id":    int64(v.ID),
		"title": v.Title,
		"pages": len(v.Pages),
	})
}

// exportVolume re-encodes a stored volume as archive bytes.
// Args: [id int]
func exportVolume(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("exportVolume requires 1 arg: id")
	}
	if svc == nil {
		return errorResult("store not initialized")
	}

	f, err := svc.Export(store.VolumeID(args[0].Int()))
	if err != nil {
		return errorResult(err.Error())
	}

	buf := js.Global().Get("Uint8Array").New(len(f.Data))
	js.CopyBytesToJS(buf, f.Data)
	return js.ValueOf(map[string]interface{}{
		"name": f.Name,
		"data": buf,
	})
}

// deleteVolume cascade deletes a volume.
// Args: [id int]
func deleteVolume(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("deleteVolume requires 1 arg: id")
	}
	if svc == nil {
		return errorResult("store not initialized")
	}
	if err := svc.DeleteVolume(store.VolumeID(args[0].Int())); err != nil {
		return errorResult(err.Error())
	}
	return successResult("deleted")
}

// listVolumes returns all volume metadata as JSON, newest first.
func listVolumes(this js.Value, args []js.Value) interface{} {
	if sqlStore == nil {
		return errorResult("store not initialized")
	}
	volumes, err := sqlStore.ListVolumes()
	if err != nil {
		return errorResult(err.Error())
	}
	type entry struct {
		ID int64 `json:"id"`
		*store.Volume
	}
	entries := make([]entry, 0, len(volumes))
	for i := len(volumes) - 1; i >= 0; i-- {
		entries = append(entries, entry{ID: int64(volumes[i].ID), Volume: volumes[i]})
	}
	return jsonResult(entries)
}

// getVolume returns one volume's metadata as JSON.
// Args: [id int]
func getVolume(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("getVolume requires 1 arg: id")
	}
	if sqlStore == nil {
		return errorResult("store not initialized")
	}
	v, err := sqlStore.GetVolume(store.VolumeID(args[0].Int()))
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(v)
}

// updateVolume writes back an edited volume working copy.
// Args: [id int, volumeJSON string]
func updateVolume(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("updateVolume requires 2 args: id, volumeJSON")
	}
	if svc == nil {
		return errorResult("store not initialized")
	}
	var v store.Volume
	if err := json.Unmarshal([]byte(args[1].String()), &v); err != nil {
		return errorResult("volume json: " + err.Error())
	}
	v.ID = store.VolumeID(args[0].Int())
	if err := svc.UpdateVolume(&v); err != nil {
		return errorResult(err.Error())
	}
	return successResult("updated")
}

// getPage returns one page's image bytes.
// Args: [id int, pageName string]
func getPage(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("getPage requires 2 args: id, pageName")
	}
	if sqlStore == nil {
		return errorResult("store not initialized")
	}
	data, err := sqlStore.GetPage(store.VolumeID(args[0].Int()), args[1].String())
	if err != nil {
		return errorResult(err.Error())
	}
	buf := js.Global().Get("Uint8Array").New(len(data))
	js.CopyBytesToJS(buf, data)
	return buf
}

// getPageOcr returns one page's OCR record as JSON.
// Args: [id int, pageName string]
func getPageOcr(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("getPageOcr requires 2 args: id, pageName")
	}
	if sqlStore == nil {
		return errorResult("store not initialized")
	}
	ocr, err := sqlStore.GetOCR(store.VolumeID(args[0].Int()), args[1].String())
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(ocr)
}

// updatePageOcr writes back an edited OCR record.
// Args: [id int, pageName string, ocrJSON string]
func updatePageOcr(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return errorResult("updatePageOcr requires 3 args: id, pageName, ocrJSON")
	}
	if svc == nil {
		return errorResult("store not initialized")
	}
	var ocr store.PageOcr
	if err := json.Unmarshal([]byte(args[2].String()), &ocr); err != nil {
		return errorResult("ocr json: " + err.Error())
	}
	if err := svc.UpdatePageOcr(store.VolumeID(args[0].Int()), args[1].String(), ocr); err != nil {
		return errorResult(err.Error())
	}
	return successResult("updated")
}

// searchOcr scans all OCR text for the given terms.
// Args: [termsJSON string] - JSON array of strings
func searchOcr(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("searchOcr requires 1 arg: termsJSON")
	}
	if sqlStore == nil {
		return errorResult("store not initialized")
	}
	var terms []string
	if err := json.Unmarshal([]byte(args[0].String()), &terms); err != nil {
		return errorResult("terms json: " + err.Error())
	}
	q, err := search.NewQuery(terms, nil)
	if err != nil {
		return errorResult(err.Error())
	}
	hits, err := q.Scan(sqlStore)
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(hits)
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

// Helper: Marshal a payload to a JSON string result
func jsonResult(v interface{}) interface{} {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return errorResult(err.Error())
	}
	return string(jsonBytes)
}
