// Package rpm reads and writes RPM software packages.
//
// A package is a 96-byte lead, a signature header, a metadata header, and a
// compressed cpio ("newc") payload holding the package files. Every size,
// count, and offset read from a package is treated as untrusted: decoding
// enforces hard caps before allocating, and extraction never writes outside
// its destination directory.
//
// # Reading
//
// Open decodes the lead and both headers and leaves the payload unread:
//
//	pkg, err := rpm.OpenFile("demo-1.0-1.noarch.rpm")
//	if err != nil {
//	    return err
//	}
//	defer pkg.Close()
//
//	name, _ := pkg.Header().String(rpm.TagName)
//	for entry, err := range pkg.Entries() {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(entry.Name, entry.FileSize)
//	}
//
// Entries can be iterated again only when the source is an io.Seeker.
//
// # Writing
//
// Builder assembles a package from a Config and a list of files:
//
//	b := rpm.NewBuilder(rpm.Config{Name: "demo", Version: "1.0", Release: "1", Arch: "noarch"})
//	b.AddFile(rpm.FileSpec{Path: "/usr/bin/demo", Source: "./demo", Mode: 0o755})
//	err := b.Write(out)
//
// Output is deterministic: the same Config and files always produce the same
// bytes.
//
// # Errors
//
// Structural failures are *FormatError values wrapping one of the sentinel
// kinds such as ErrBadMagic or ErrOversizedField; match them with errors.Is.
// Unknown header tags and value types are not errors: they are reported as
// Diagnostics on the decoded Header.
package rpm
