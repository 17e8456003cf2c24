// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"
	"math"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/pagefind/core"
)

// resultFormatVersion prefixes every encoded extraction result.
const resultFormatVersion = 1

// MarshalExtractionResult serializes a DocumentExtractionResult to bytes.
func MarshalExtractionResult(result *core.DocumentExtractionResult) []byte {
	buf := make([]byte, resultSize(result))
	resultMarshal(result, buf)
	return buf
}

// UnmarshalExtractionResult deserializes a DocumentExtractionResult from bytes.
func UnmarshalExtractionResult(data []byte) (*core.DocumentExtractionResult, error) {
	result, err := resultUnmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return result, nil
}

func resultSize(r *core.DocumentExtractionResult) int {
	size := varint.Int.Size(resultFormatVersion)
	size += varint.Uint64.Size(uint64(r.ID))
	size += varint.Int.Size(int(r.Method))
	size += varint.Int.Size(len(r.Pages))
	for _, p := range r.Pages {
		size += pageSize(p)
	}
	size += varint.Int.Size(len(r.DetectedLanguages))
	for _, lang := range r.DetectedLanguages {
		size += ord.String.Size(lang)
	}
	return size + metadataSize(r.Metadata)
}

func resultMarshal(r *core.DocumentExtractionResult, bs []byte) (n int) {
	n = varint.Int.Marshal(resultFormatVersion, bs)
	n += varint.Uint64.Marshal(uint64(r.ID), bs[n:])
	n += varint.Int.Marshal(int(r.Method), bs[n:])
	n += varint.Int.Marshal(len(r.Pages), bs[n:])
	for _, p := range r.Pages {
		n += pageMarshal(p, bs[n:])
	}
	n += varint.Int.Marshal(len(r.DetectedLanguages), bs[n:])
	for _, lang := range r.DetectedLanguages {
		n += ord.String.Marshal(lang, bs[n:])
	}
	n += metadataMarshal(r.Metadata, bs[n:])
	return n
}

func resultUnmarshal(bs []byte) (*core.DocumentExtractionResult, error) {
	version, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, err
	}
	if version != resultFormatVersion {
		return nil, fmt.Errorf("unsupported format version %d", version)
	}

	var (
		r    core.DocumentExtractionResult
		m    int
		id   uint64
		meth int
	)
	if id, m, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return nil, err
	}
	n += m
	r.ID = core.ID(id)

	if meth, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return nil, err
	}
	n += m
	r.Method = core.ExtractionMethod(meth)

	count, m, err := unmarshalCount(bs[n:])
	if err != nil {
		return nil, err
	}
	n += m
	r.Pages = make([]core.Page, count)
	for i := range r.Pages {
		if r.Pages[i], m, err = pageUnmarshal(bs[n:]); err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		n += m
	}

	if count, m, err = unmarshalCount(bs[n:]); err != nil {
		return nil, err
	}
	n += m
	r.DetectedLanguages = make([]string, count)
	for i := range r.DetectedLanguages {
		if r.DetectedLanguages[i], m, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return nil, err
		}
		n += m
	}

	if r.Metadata, _, err = metadataUnmarshal(bs[n:]); err != nil {
		return nil, err
	}
	return &r, nil
}

// unmarshalCount reads a slice length and rejects values the remaining
// input could not possibly hold.
func unmarshalCount(bs []byte) (int, int, error) {
	count, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return 0, n, err
	}
	if count < 0 || count > len(bs)-n {
		return 0, n, fmt.Errorf("%w: length %d", ErrTruncatedData, count)
	}
	return count, n, nil
}

func pageSize(p core.Page) int {
	return varint.Int.Size(p.Number) +
		ord.String.Size(p.Text) +
		varint.Uint64.Size(math.Float64bits(p.Confidence)) +
		varint.Int.Size(int(p.Source))
}

func pageMarshal(p core.Page, bs []byte) (n int) {
	n = varint.Int.Marshal(p.Number, bs)
	n += ord.String.Marshal(p.Text, bs[n:])
	n += varint.Uint64.Marshal(math.Float64bits(p.Confidence), bs[n:])
	n += varint.Int.Marshal(int(p.Source), bs[n:])
	return n
}

func pageUnmarshal(bs []byte) (p core.Page, n int, err error) {
	var (
		m      int
		bits   uint64
		source int
	)
	if p.Number, n, err = varint.Int.Unmarshal(bs); err != nil {
		return
	}
	if p.Text, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	if bits, m, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	p.Confidence = math.Float64frombits(bits)
	if source, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	p.Source = core.Source(source)
	return
}

func metadataSize(md core.Metadata) int {
	return varint.Int.Size(md.PageCount) +
		varint.Int64.Size(md.FileSizeBytes) +
		ord.String.Size(md.Title) +
		ord.String.Size(md.Author) +
		ord.String.Size(md.Subject) +
		ord.String.Size(md.Creator)
}

func metadataMarshal(md core.Metadata, bs []byte) (n int) {
	n = varint.Int.Marshal(md.PageCount, bs)
	n += varint.Int64.Marshal(md.FileSizeBytes, bs[n:])
	for _, s := range []string{md.Title, md.Author, md.Subject, md.Creator} {
		n += ord.String.Marshal(s, bs[n:])
	}
	return n
}

func metadataUnmarshal(bs []byte) (md core.Metadata, n int, err error) {
	var m int
	if md.PageCount, n, err = varint.Int.Unmarshal(bs); err != nil {
		return
	}
	if md.FileSizeBytes, m, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += m
	for _, field := range []*string{&md.Title, &md.Author, &md.Subject, &md.Creator} {
		if *field, m, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return
		}
		n += m
	}
	return
}
