package domain

import (
	"database/sql/driver" // Valuer interface for GORM columns
	"fmt"                 // Error formatting
	"sort"                // Stable ordering of stored permissions
	"strings"             // Joining and splitting the stored column
)

// Permission is a capability token held by a user
type Permission string

const (
	PermAdmin            Permission = "ADMIN"            // Full access
	PermUser             Permission = "USER"             // Granted to everyone at signup
	PermItemCreate       Permission = "ITEMCREATE"       // May create items
	PermItemUpdate       Permission = "ITEMUPDATE"       // May update any item
	PermItemDelete       Permission = "ITEMDELETE"       // May delete any item
	PermPermissionUpdate Permission = "PERMISSIONUPDATE" // May change other users' permissions
)

// knownPermissions lists every token the system accepts
var knownPermissions = map[Permission]bool{
	PermAdmin:            true,
	PermUser:             true,
	PermItemCreate:       true,
	PermItemUpdate:       true,
	PermItemDelete:       true,
	PermPermissionUpdate: true,
}

// Valid reports whether p is a known permission token
func (p Permission) Valid() bool {
	return knownPermissions[p]
}

// Permissions is an unordered set of permission tokens stored as one comma-joined column
type Permissions []Permission

// Has reports whether the set contains p
func (ps Permissions) Has(p Permission) bool {
	for _, have := range ps {
		if have == p {
			return true
		}
	}
	return false
}

// HasAny reports whether the set intersects required
func (ps Permissions) HasAny(required ...Permission) bool {
	for _, r := range required {
		if ps.Has(r) {
			return true
		}
	}
	return false
}

// Normalize validates every token, drops duplicates and makes sure USER is present.
func (ps Permissions) Normalize() (Permissions, error) {
	seen := map[Permission]bool{PermUser: true}
	out := Permissions{PermUser}
	for _, p := range ps {
		p = Permission(strings.ToUpper(strings.TrimSpace(string(p))))
		if !p.Valid() {
			return nil, Validation(fmt.Sprintf("Unknown permission %q", p))
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// Value implements driver.Valuer
func (ps Permissions) Value() (driver.Value, error) {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = string(p)
	}
	return strings.Join(parts, ","), nil
}

// Scan implements sql.Scanner
func (ps *Permissions) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*ps = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("permissions: unsupported column type %T", src)
	}
	out := Permissions{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, Permission(part))
		}
	}
	*ps = out
	return nil
}
