// Package ebxreader decodes a single Partition-dialect asset from a
// random-access byte stream: header, descriptor tables, then the instance
// data region, resolving every field through an ebxschema.Oracle.
package ebxreader

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/shoe7ess/FrostyToolsuite/ebxasset"
	"github.com/shoe7ess/FrostyToolsuite/ebxdesc"
	"github.com/shoe7ess/FrostyToolsuite/ebxhash"
	"github.com/shoe7ess/FrostyToolsuite/ebxheader"
	"github.com/shoe7ess/FrostyToolsuite/ebxio"
	"github.com/shoe7ess/FrostyToolsuite/ebxlog"
	"github.com/shoe7ess/FrostyToolsuite/ebxresolve"
	"github.com/shoe7ess/FrostyToolsuite/ebxschema"
)

// Reader decodes one Partition asset. It is not safe for concurrent reuse
// across assets; build a fresh Reader per stream.
type Reader struct {
	stream *ebxio.Reader
	oracle ebxschema.Oracle
	logger ebxlog.Logger

	header   *ebxheader.Header
	resolver *ebxresolve.Resolver

	imports        []ebxdesc.ImportRef
	arrayRows      []ebxdesc.ArrayRow
	boxedValueRows []ebxdesc.BoxedValueRow

	objects       []ebxschema.Instance
	instanceTypes []ebxdesc.TypeDescriptor
	guids         []ebxasset.AssetClassGuid
	refCounts     []uint32
}

// New builds a Reader over stream, resolving types/instances through oracle.
// A nil logger installs the silent default.
func New(stream *ebxio.Reader, oracle ebxschema.Oracle, logger ebxlog.Logger) *Reader {
	if logger == nil {
		logger = ebxlog.Default
	}
	return &Reader{stream: stream, oracle: oracle, logger: logger}
}

// ReadAsset decodes the header, every descriptor table, and every instance's
// field data, in wire order.
func (rd *Reader) ReadAsset() (*ebxasset.Asset, error) {
	header, err := ebxheader.Decode(rd.stream)
	if err != nil {
		return nil, err
	}
	rd.header = header

	imports, err := ebxdesc.DecodeImports(rd.stream, header.ImportCount)
	if err != nil {
		return nil, errors.Wrap(err, "ebxreader.ReadAsset: imports")
	}
	rd.imports = imports

	typeNames, err := ebxdesc.DecodeTypeNames(rd.stream, header.TypeNamesLen, ebxhash.Hash32)
	if err != nil {
		return nil, errors.Wrap(err, "ebxreader.ReadAsset: type names")
	}

	fields, err := ebxdesc.DecodeFieldDescriptors(rd.stream, header.FieldDescriptorCount)
	if err != nil {
		return nil, errors.Wrap(err, "ebxreader.ReadAsset: field descriptors")
	}
	for i := range fields {
		fields[i].Name = typeNames[fields[i].NameHash]
	}

	types, err := ebxdesc.DecodeTypeDescriptors(rd.stream, header.TypeDescriptorCount)
	if err != nil {
		return nil, errors.Wrap(err, "ebxreader.ReadAsset: type descriptors")
	}
	for i := range types {
		types[i].Name = typeNames[types[i].NameHash]
	}

	rd.resolver = ebxresolve.New(types, fields)
	for _, t := range types {
		if err := rd.resolver.ValidateTypeDescriptor(t); err != nil {
			return nil, errors.Wrap(ebxasset.ErrBadLayout, err.Error())
		}
	}

	instanceRows, err := ebxdesc.DecodeInstanceRows(rd.stream, header.InstanceCount)
	if err != nil {
		return nil, errors.Wrap(err, "ebxreader.ReadAsset: instance table")
	}
	if err := rd.preallocateInstances(instanceRows); err != nil {
		return nil, err
	}

	if err := rd.stream.Pad(16); err != nil {
		return nil, errors.Wrap(err, "ebxreader.ReadAsset: pad before array table")
	}
	arrayRows, err := ebxdesc.DecodeArrayRows(rd.stream, header.ArrayCount)
	if err != nil {
		return nil, errors.Wrap(err, "ebxreader.ReadAsset: array table")
	}
	rd.arrayRows = arrayRows

	if err := rd.stream.Pad(16); err != nil {
		return nil, errors.Wrap(err, "ebxreader.ReadAsset: pad before boxed-value table")
	}
	boxedRows, err := ebxdesc.DecodeBoxedValueRows(rd.stream, header.BoxedValuesCount)
	if err != nil {
		return nil, errors.Wrap(err, "ebxreader.ReadAsset: boxed-value table")
	}
	rd.boxedValueRows = boxedRows

	if err := rd.stream.Seek(header.InstanceRegionOffset()); err != nil {
		return nil, errors.Wrap(err, "ebxreader.ReadAsset: seek to instance region")
	}
	for i, t := range rd.instanceTypes {
		if err := rd.readInstance(i, t); err != nil {
			return nil, errors.Wrapf(err, "ebxreader.ReadAsset: instance %d", i)
		}
	}

	for _, obj := range rd.objects {
		if lc, ok := obj.(interface{ OnLoadComplete() }); ok {
			lc.OnLoadComplete()
		}
	}

	return &ebxasset.Asset{
		FileGuid:      header.FileGuid,
		Objects:       rd.objects,
		Guids:         rd.guids,
		RefCounts:     rd.refCounts,
		Imports:       rd.imports,
		Dependencies:  collectDependencies(rd.imports),
		ExportedCount: int(header.ExportedCount),
	}, nil
}

// preallocateInstances expands each (typeRef, repetition count) row into
// that many blank objects, in order, before any field data is read.
func (rd *Reader) preallocateInstances(rows []ebxdesc.InstanceRow) error {
	for _, row := range rows {
		t, err := rd.resolver.ResolveType(row.TypeRef)
		if err != nil {
			return errors.Wrap(ebxasset.ErrBadLayout, err.Error())
		}
		for i := uint16(0); i < row.Count; i++ {
			inst, err := rd.oracle.NewInstance(t.NameHash)
			if err != nil {
				return errors.Wrapf(ebxasset.ErrSchemaMismatch, "type hash %d: %v", t.NameHash, err)
			}
			rd.objects = append(rd.objects, inst)
			rd.instanceTypes = append(rd.instanceTypes, t)
			rd.refCounts = append(rd.refCounts, 0)
		}
	}
	rd.guids = make([]ebxasset.AssetClassGuid, len(rd.objects))
	return nil
}

func collectDependencies(imports []ebxdesc.ImportRef) []ebxio.Guid {
	guids := lo.Map(imports, func(imp ebxdesc.ImportRef, _ int) ebxio.Guid { return imp.FileGuid })
	return lo.Uniq(guids)
}

// readInstance decodes one top-level object's header (alignment pad,
// optional export GUID, optional header padding) and then its field data.
func (rd *Reader) readInstance(index int, t ebxdesc.TypeDescriptor) error {
	align := ebxresolve.Alignment(t)
	if err := rd.stream.Pad(int(align)); err != nil {
		return err
	}

	var guid ebxio.Guid
	if index < int(rd.header.ExportedCount) {
		g, err := rd.stream.ReadGuid()
		if err != nil {
			return err
		}
		guid = g
	}
	if ebxresolve.HasObjectHeader(t) {
		if _, err := rd.stream.ReadBytes(8); err != nil {
			return err
		}
	}
	rd.guids[index] = ebxasset.AssetClassGuid{Guid: guid, Index: index}

	pos, err := rd.stream.Tell()
	if err != nil {
		return err
	}
	startOffset := pos - 8

	info, ok := rd.oracle.TypeInfo(t.NameHash)
	if !ok {
		return errors.Wrapf(ebxasset.ErrSchemaMismatch, "instance type hash %d", t.NameHash)
	}
	return rd.readClassBody(t, info, rd.objects[index], startOffset)
}
