// Package inspect identifies linker-loadable objects by examining their
// binary headers rather than trusting filename patterns. It exposes a small
// Inspector capability with one variant per object format, plus a sniffing
// dispatcher that picks the right variant from the file's magic bytes.
package inspect
