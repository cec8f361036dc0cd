//go:build js && wasm

package main

import (
	"fmt"
	"syscall/js"

	"github.com/gemlab/spectraldna/pkg/spectraldna/fingerprint"
)

// Error codes returned to JavaScript
const (
	ErrorNone = iota
	ErrorInvalidArgs
	ErrorInvalidInput
	ErrorSerialization
)

// spectralHash computes the fingerprint of one reading in the browser.
// Arguments: peaks, intensities[, mineralClass[, algorithm]].
// Returns: {error: number, data: object | string}
func spectralHash(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected at least 2 arguments: peaks, intensities")
	}

	peaks, err := floatArray(args[0], "peaks")
	if err != nil {
		return makeErrorResponse(ErrorInvalidArgs, err.Error())
	}
	intensities, err := floatArray(args[1], "intensities")
	if err != nil {
		return makeErrorResponse(ErrorInvalidArgs, err.Error())
	}

	var opts []fingerprint.Option
	if len(args) > 2 && args[2].Type() == js.TypeString {
		opts = append(opts, fingerprint.WithMineralClass(args[2].String()))
	}
	if len(args) > 3 && args[3].Type() == js.TypeString {
		alg, err := fingerprint.ParseHashAlgorithm(args[3].String())
		if err != nil {
			return makeErrorResponse(ErrorInvalidArgs, err.Error())
		}
		opts = append(opts, fingerprint.WithAlgorithm(alg))
	}

	h, err := fingerprint.New(opts...)
	if err != nil {
		return makeErrorResponse(ErrorInvalidArgs, err.Error())
	}
	res, err := h.Fingerprint(fingerprint.RawMeasurement{Peaks: peaks, Intensities: intensities})
	if err != nil {
		code := ErrorInvalidInput
		if fingerprint.IsKind(err, fingerprint.KindSerialization) {
			code = ErrorSerialization
		}
		return makeErrorResponse(code, err.Error())
	}

	quantized := js.Global().Get("Array").New()
	for i, p := range res.Record.PeaksQuantized {
		quantized.SetIndex(i, p)
	}

	data := js.Global().Get("Object").New()
	data.Set("fingerprint", res.Fingerprint.String())
	data.Set("payload", string(res.Payload))
	data.Set("cid", res.CID)
	data.Set("peaks", quantized)

	result := js.Global().Get("Object").New()
	result.Set("error", ErrorNone)
	result.Set("data", data)
	return result
}

func floatArray(v js.Value, name string) ([]float64, error) {
	if v.Type() != js.TypeObject {
		return nil, fmt.Errorf("%s must be an Array or Float64Array", name)
	}
	n := v.Length()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		el := v.Index(i)
		if el.Type() != js.TypeNumber {
			return nil, fmt.Errorf("%s element %d is not a number", name, i)
		}
		out[i] = el.Float()
	}
	return out, nil
}

func makeErrorResponse(errorCode int, message string) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", errorCode)
	result.Set("data", message)
	return result
}

func main() {
	console := js.Global().Get("console")
	done := make(chan struct{})

	js.Global().Set("spectralHash", js.FuncOf(spectralHash))

	window := js.Global().Get("window")
	if !window.IsUndefined() {
		event := js.Global().Get("CustomEvent").New("wasmReady", js.Global().Get("Object").New())
		window.Call("dispatchEvent", event)
	} else if !console.IsUndefined() {
		console.Call("error", "window object is undefined")
	}

	if !console.IsUndefined() {
		console.Call("log", "SpectralDNA WASM module loaded")
	}

	<-done
}
