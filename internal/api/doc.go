// Package api defines wire-format types and converters for the IPC and HTTP
// API layer. It translates internal store models into transport-friendly DTOs
// that clients can render without coupling to internal types.
//
// # Key Types
//
// Tree: transport representation of a tree record with coordinates, scan
// counters, and lifecycle status.
//
// ResolveResult: outcome of a scan resolution including the matched field and
// any side-effect warning.
//
// DaemonStatus: aggregated runtime information including preflight checks.
//
// # Converters
//
// FromTree, FromCampaign, FromUser and friends map store records onto DTOs.
// NearbyTrees/NearbyCampaigns flatten geo matches into record-plus-distance
// rows.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript/TypeScript consumers. Internal
// enums (store.TreeStatus, store.CampaignStatus) are exposed as lowercase
// strings. Timestamps use RFC3339 with milliseconds. Optional coordinates stay
// pointers so unmapped records serialize as null rather than 0,0 (a real
// position off the coast of Ghana).
package api
