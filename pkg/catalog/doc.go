// Package catalog owns the plan catalog.
//
// Plans are read by the subscription engine through Service.List (sorted by
// ascending price, ties by name) and Service.FindByID, and are maintained by
// administrators through Create, Update and Delete. Names are unique
// case-insensitively. Delete is refused with ErrPlanInUse while an active
// subscription references the plan, when a UsageChecker is configured.
//
// Repositories: MemoryRepository here, Mongo and Postgres implementations in
// pkg/storage. RedisCache can front List; every write invalidates it.
//
// LoadYAML and Seed bootstrap an empty catalog from a YAML file.
package catalog
