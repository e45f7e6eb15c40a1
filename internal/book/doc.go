// Package book fetches FlipHTML5 reader pages and resolves their page lists.
//
// A reader base URL yields two documents: the book HTML (title and
// description metadata) and javascript/config.js (a JSON object wrapped in a
// var assignment). The page list inside the config is either a plain JSON
// array or an obfuscated string that must go through the manifest decoder
// before it can be parsed.
package book
