// Package memory sets the Go runtime soft memory limit (GOMEMLIMIT) from the
// portal configuration.
//
// Go picks up CPU quotas from cgroups but not memory limits, so a container
// deployment passes its limit through memory_limit (typically filled from
// the Kubernetes Downward API via PORTAL_MEMORY_LIMIT). Configure reserves
// 1-memory_ratio of that for non-heap memory:
//
//	env:
//	- name: PORTAL_MEMORY_LIMIT
//	  valueFrom:
//	    resourceFieldRef:
//	      resource: limits.memory
//
// A GOMEMLIMIT already present in the environment always takes precedence.
package memory
