// Package marker persists the in-progress run marker as JSON on disk.
package marker
