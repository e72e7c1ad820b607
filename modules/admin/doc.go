// Package admin mounts the administrator API under /admin: plan catalog
// CRUD, subscription listing with a status filter, an XLSX export, the top
// plans report and usage recording. Every route requires the admin role.
package admin
