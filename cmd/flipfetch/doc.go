// Command flipfetch downloads FlipHTML5 books and assembles them into PDFs.
package main
