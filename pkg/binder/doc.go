// Package binder decodes HTTP request data into tagged structs: strict JSON
// bodies, query parameters and router path parameters. Fields whose type
// implements encoding.TextUnmarshaler, such as uuid.UUID, are parsed with it.
//
//	type changePlanRequest struct {
//		UserID string    `path:"userId"`
//		ID     uuid.UUID `path:"id"`
//		PlanID string    `json:"planId"`
//	}
package binder
