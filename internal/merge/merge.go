package merge

import (
	"errors"
	"fmt"
	"sort"

	"github.com/scott-vision/YOLO-COCO-Converter/internal/coco"
)

// Fatal merge errors; match with errors.Is.
var (
	// ErrMissingCategories reports an input dataset with no categories.
	ErrMissingCategories = errors.New("dataset has no categories")

	// ErrCategoryMismatch reports category tables that differ and cannot be
	// reconciled: ids differ with alignment disabled, or name sets differ
	// even with alignment enabled.
	ErrCategoryMismatch = errors.New("category mismatch")

	// ErrPrefixCountMismatch reports a custom prefix list whose length does
	// not equal the number of inputs.
	ErrPrefixCountMismatch = errors.New("prefix count mismatch")
)

// PrefixMode selects how image file_name values are disambiguated.
type PrefixMode string

const (
	// PrefixNone keeps file names as-is.
	PrefixNone PrefixMode = "none"

	// PrefixBasename prepends each input's identifying stem plus "_".
	PrefixBasename PrefixMode = "basename"

	// PrefixCustom prepends the matching entry of Options.CustomPrefixes
	// verbatim.
	PrefixCustom PrefixMode = "custom"
)

// Input is one dataset to merge together with its identifying stem, used
// for basename prefixing. The stem is typically the input file's name
// without extension.
type Input struct {
	Stem    string
	Dataset *coco.Dataset
}

// Options configures a merge.
type Options struct {
	// PrefixMode selects file-name disambiguation. Empty defaults to
	// PrefixNone.
	PrefixMode PrefixMode

	// CustomPrefixes supplies one prefix per input when PrefixMode is
	// PrefixCustom.
	CustomPrefixes []string

	// AlignByName reconciles category tables through shared names when raw
	// ids disagree.
	AlignByName bool

	// DropDuplicateFilenames drops any image whose post-prefix file_name
	// was already accepted (keep-first policy), together with all of its
	// annotations.
	DropDuplicateFilenames bool
}

// Merge combines the inputs into a single dataset, processed strictly in
// input order. See the package documentation for the reconciliation,
// deduplication, and renumbering rules.
func Merge(inputs []Input, opts Options) (*coco.Dataset, error) {
	if opts.PrefixMode == PrefixCustom && len(opts.CustomPrefixes) != len(inputs) {
		return nil, fmt.Errorf("%w: %d prefixes for %d inputs", ErrPrefixCountMismatch, len(opts.CustomPrefixes), len(inputs))
	}

	catMaps, mergedCategories, err := reconcileCategories(inputs, opts.AlignByName)
	if err != nil {
		return nil, err
	}

	allLicenses := make([]coco.License, 0)
	for _, in := range inputs {
		allLicenses = append(allLicenses, in.Dataset.Licenses...)
	}
	mergedLicenses, licenseIDs := dedupLicenses(allLicenses)

	out := coco.NewDataset()
	out.Categories = mergedCategories
	out.Licenses = mergedLicenses
	out.Info = map[string]any{"description": "Merged COCO dataset"}
	if len(inputs) > 0 && len(inputs[0].Dataset.Info) > 0 {
		out.Info = inputs[0].Dataset.Info
	}

	nextImgID := 1
	nextAnnID := 1
	// Scoped to this merge invocation: file names accepted so far across
	// all inputs.
	seenFilenames := make(map[string]bool)

	for i, in := range inputs {
		ds := in.Dataset

		prefix := ""
		switch opts.PrefixMode {
		case PrefixBasename:
			prefix = in.Stem + "_"
		case PrefixCustom:
			prefix = opts.CustomPrefixes[i]
		}

		// Restrict the global license key table to ids this dataset defines.
		licMap := make(map[int]int)
		for _, lic := range ds.Licenses {
			if newID, ok := licenseIDs[licenseKey(lic)]; ok {
				licMap[lic.ID] = newID
			}
		}

		annsByImage := make(map[int][]coco.Annotation)
		for _, a := range ds.Annotations {
			annsByImage[a.ImageID] = append(annsByImage[a.ImageID], a)
		}

		for _, img := range ds.Images {
			newFileName := prefix + img.FileName
			if opts.DropDuplicateFilenames && seenFilenames[newFileName] {
				continue
			}
			seenFilenames[newFileName] = true

			newImg := img
			newImg.ID = nextImgID
			newImg.FileName = newFileName
			if img.License != nil {
				if newLic, ok := licMap[*img.License]; ok {
					newImg.License = &newLic
				} else {
					newImg.License = nil
				}
			}
			out.Images = append(out.Images, newImg)

			for _, a := range annsByImage[img.ID] {
				newAnn := a
				newAnn.ID = nextAnnID
				newAnn.ImageID = nextImgID
				if mapped, ok := catMaps[i][a.CategoryID]; ok {
					newAnn.CategoryID = mapped
				}
				out.Annotations = append(out.Annotations, newAnn)
				nextAnnID++
			}
			nextImgID++
		}
	}

	return out, nil
}

// reconcileCategories validates every input's category table against the
// first input's and returns per-input id maps plus the canonical category
// list sorted by id.
func reconcileCategories(inputs []Input, alignByName bool) ([]map[int]int, []coco.Category, error) {
	if len(inputs) == 0 {
		return nil, nil, fmt.Errorf("%w: no input datasets", ErrMissingCategories)
	}
	firstCats := inputs[0].Dataset.Categories
	if len(firstCats) == 0 {
		return nil, nil, fmt.Errorf("%w: first dataset (%s)", ErrMissingCategories, inputs[0].Stem)
	}
	firstSig := categorySignature(firstCats)
	firstNameToID := categoryNameMap(firstCats)

	catMaps := make([]map[int]int, 0, len(inputs))
	for i, in := range inputs {
		cats := in.Dataset.Categories
		if len(cats) == 0 {
			return nil, nil, fmt.Errorf("%w: dataset %s", ErrMissingCategories, in.Stem)
		}

		catMap := make(map[int]int, len(cats))
		if signaturesEqual(categorySignature(cats), firstSig) {
			for _, c := range cats {
				catMap[c.ID] = c.ID
			}
		} else {
			if !alignByName {
				return nil, nil, fmt.Errorf("%w between dataset 0 and dataset %d: ids differ; enable align-by-name if names match", ErrCategoryMismatch, i)
			}
			nameToID := categoryNameMap(cats)
			if !sameNameSet(nameToID, firstNameToID) {
				return nil, nil, fmt.Errorf("%w: cannot align dataset %d by name: first names %v, dataset %d names %v",
					ErrCategoryMismatch, i, sortedNames(firstNameToID), i, sortedNames(nameToID))
			}
			for name, id := range nameToID {
				catMap[id] = firstNameToID[name]
			}
		}
		catMaps = append(catMaps, catMap)
	}

	merged := make([]coco.Category, len(firstCats))
	copy(merged, firstCats)
	sort.Slice(merged, func(a, b int) bool { return merged[a].ID < merged[b].ID })

	return catMaps, merged, nil
}

// categorySignature returns the (id, name) pairs sorted by id, for exact
// table comparison.
func categorySignature(cats []coco.Category) []coco.Category {
	sig := make([]coco.Category, len(cats))
	copy(sig, cats)
	sort.Slice(sig, func(i, j int) bool { return sig[i].ID < sig[j].ID })
	return sig
}

func signaturesEqual(a, b []coco.Category) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func categoryNameMap(cats []coco.Category) map[string]int {
	m := make(map[string]int, len(cats))
	for _, c := range cats {
		m[c.Name] = c.ID
	}
	return m
}

func sameNameSet(a, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for name := range a {
		if _, ok := b[name]; !ok {
			return false
		}
	}
	return true
}

func sortedNames(m map[string]int) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// licenseKey is the deduplication key for a license.
func licenseKey(lic coco.License) [2]string {
	return [2]string{lic.Name, lic.URL}
}

// dedupLicenses scans the concatenated license lists once, assigning the
// next sequential id starting at 1 to the first occurrence of each
// (name, url) key. Later occurrences map to the first occurrence's id.
func dedupLicenses(all []coco.License) ([]coco.License, map[[2]string]int) {
	keyToID := make(map[[2]string]int)
	out := make([]coco.License, 0)
	nextID := 1
	for _, lic := range all {
		key := licenseKey(lic)
		if _, ok := keyToID[key]; ok {
			continue
		}
		keyToID[key] = nextID
		out = append(out, coco.License{ID: nextID, Name: lic.Name, URL: lic.URL})
		nextID++
	}
	return out, keyToID
}
