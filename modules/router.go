package modules

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Mountable interface {
	Handle() http.Handler
}

// RouterOptions selects the API modules to mount. Nil modules are skipped.
type RouterOptions struct {
	Subscriptions Mountable
	Admin         Mountable
}

// Router mounts the API modules. Callers put authentication middleware in
// front of it.
//
//	r.Mount("/", modules.Router(modules.RouterOptions{
//		Subscriptions: subscriptions.New(subSvc, planSvc, guard, responder),
//		Admin:         admin.New(subSvc, planSvc, guard, responder),
//	}))
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	if opts.Admin != nil {
		r.Mount("/admin", opts.Admin.Handle())
	}
	if opts.Subscriptions != nil {
		r.Mount("/", opts.Subscriptions.Handle())
	}

	return r
}
