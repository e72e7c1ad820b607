package binder

import "net/http"

// Path returns a binder filling fields tagged `path:"name"` from router
// path parameters read through extractor, usually chi.URLParam.
func Path(extractor func(r *http.Request, name string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		names, err := tagNames(v, "path", ErrFailedToParsePath)
		if err != nil {
			return err
		}
		values := make(map[string][]string, len(names))
		for _, name := range names {
			if val := extractor(r, name); val != "" {
				values[name] = []string{val}
			}
		}
		return bindToStruct(v, "path", values, ErrFailedToParsePath)
	}
}
