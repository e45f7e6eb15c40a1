// Package download fetches page images with a bounded worker pool.
package download
