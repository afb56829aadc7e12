package ebxdesc

import "github.com/shoe7ess/FrostyToolsuite/ebxio"

func EncodeImport(w *ebxio.Writer, imp ImportRef) {
	w.WriteGuid(imp.FileGuid)
	w.WriteGuid(imp.ClassGuid)
}

func EncodeImports(w *ebxio.Writer, imports []ImportRef) {
	for _, imp := range imports {
		EncodeImport(w, imp)
	}
}

func EncodeFieldDescriptor(w *ebxio.Writer, f FieldDescriptor) {
	w.WriteU32(f.NameHash)
	w.WriteU16(uint16(f.Flags))
	w.WriteU16(f.TypeDescriptorRef)
	w.WriteU32(f.DataOffset)
	w.WriteU32(f.SecondOffset)
}

func EncodeFieldDescriptors(w *ebxio.Writer, fields []FieldDescriptor) {
	for _, f := range fields {
		EncodeFieldDescriptor(w, f)
	}
}

func EncodeTypeDescriptor(w *ebxio.Writer, t TypeDescriptor) {
	w.WriteU32(t.NameHash)
	w.WriteI32(t.FieldIndex)
	w.WriteU8(t.FieldCount)
	w.WriteU8(t.Alignment)
	w.WriteU16(t.Flags)
	w.WriteU16(t.Size)
	w.WriteU16(t.SecondSize)
}

func EncodeTypeDescriptors(w *ebxio.Writer, types []TypeDescriptor) {
	for _, t := range types {
		EncodeTypeDescriptor(w, t)
	}
}

func EncodeInstanceRow(w *ebxio.Writer, row InstanceRow) {
	w.WriteU16(row.TypeRef)
	w.WriteU16(row.Count)
}

func EncodeInstanceRows(w *ebxio.Writer, rows []InstanceRow) {
	for _, row := range rows {
		EncodeInstanceRow(w, row)
	}
}

func EncodeArrayRow(w *ebxio.Writer, row ArrayRow) {
	w.WriteU32(row.Offset)
	w.WriteU32(row.Count)
	w.WriteI32(row.TypeDescriptorRef)
}

func EncodeArrayRows(w *ebxio.Writer, rows []ArrayRow) {
	for _, row := range rows {
		EncodeArrayRow(w, row)
	}
}

func EncodeBoxedValueRow(w *ebxio.Writer, row BoxedValueRow) {
	w.WriteU32(row.Offset)
	w.WriteU16(row.TypeDescriptorRef)
	w.WriteU16(uint16(row.Type))
}

func EncodeBoxedValueRows(w *ebxio.Writer, rows []BoxedValueRow) {
	for _, row := range rows {
		EncodeBoxedValueRow(w, row)
	}
}

// EncodeTypeNames writes the densely-packed NUL-terminated name region in
// the given order, returning its total byte length.
func EncodeTypeNames(w *ebxio.Writer, names []string) uint16 {
	start := w.Tell()
	for _, n := range names {
		w.WriteCString(n)
	}
	return uint16(w.Tell() - start)
}
