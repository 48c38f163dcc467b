package attach

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/matsen/zotero2papis/internal/pubdate"
	"github.com/matsen/zotero2papis/internal/reference"
)

// maxDirNameBytes keeps generated directory names under common filesystem limits.
const maxDirNameBytes = 200

// FilePlan is one attachment file to retain in the target directory.
type FilePlan struct {
	Attachment reference.Attachment
	Path       Path
	Name       string // File name inside the target directory
	Source     string // Real location under storage/<key>/
	Dest       string
}

// Plan is the layout computed for one item before the output tree is touched.
type Plan struct {
	ItemKey   string
	TargetDir string
	Primary   *FilePlan
	Secondary []FilePlan
}

// Plan chooses the item's primary document, derives its target directory
// and lists every file to retain. primaries are the whitelisted candidates
// in query order; all are every attachment of the item.
func (r *Resolver) Plan(item reference.Item, fields reference.FieldMap, primaries, all []reference.Attachment) Plan {
	log := r.logger.With("item_key", item.Key)
	plan := Plan{ItemKey: item.Key}

	var primary *reference.Attachment
	for i := range primaries {
		if ParsePath(primaries[i].Path).Scheme == SchemeNone {
			continue
		}
		if primary == nil {
			primary = &primaries[i]
			continue
		}
		log.Warn("multiple primary document candidates; using lowest attachment id",
			"chosen", primary.Key, "ignored", primaries[i].Key)
	}

	plan.TargetDir = filepath.Join(r.outputRoot, r.fallbackDirName(item, fields))
	if primary != nil {
		p := ParsePath(primary.Path)
		if p.Scheme == SchemeLegacy {
			if name := p.ParentName(); name != "" {
				plan.TargetDir = filepath.Join(r.outputRoot, name)
			} else {
				log.Warn("legacy attachment path has no parent directory; using date/title directory",
					"path", primary.Path)
			}
		}
		fp := r.filePlan(*primary, p, plan.TargetDir)
		plan.Primary = &fp
	}

	for _, att := range all {
		if primary != nil && att.ItemID == primary.ItemID {
			continue
		}
		p := ParsePath(att.Path)
		if p.Scheme != SchemeStored {
			log.Debug("skipping non-stored attachment", "attachment_key", att.Key, "scheme", p.Scheme.String())
			continue
		}
		plan.Secondary = append(plan.Secondary, r.filePlan(att, p, plan.TargetDir))
	}

	return plan
}

func (r *Resolver) filePlan(att reference.Attachment, p Path, targetDir string) FilePlan {
	name := p.FileName()
	return FilePlan{
		Attachment: att,
		Path:       p,
		Name:       name,
		Source:     p.Source(r.storageRoot, att.Key),
		Dest:       filepath.Join(targetDir, filepath.FromSlash(name)),
	}
}

// fallbackDirName returns "{year}_{title}" for an item.
func (r *Resolver) fallbackDirName(item reference.Item, fields reference.FieldMap) string {
	title := sanitizeName(fields.Title())
	if title == "" {
		title = item.Key
	}
	return truncateName(pubdate.YearLabel(fields["date"]) + "_" + title)
}

// sanitizeName makes a title usable as a single path element.
func sanitizeName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		case '\n', '\r', '\t':
			return ' '
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// truncateName cuts name to maxDirNameBytes on a rune boundary.
func truncateName(name string) string {
	if len(name) <= maxDirNameBytes {
		return name
	}
	cut := maxDirNameBytes
	for cut > 0 && !utf8.RuneStart(name[cut]) {
		cut--
	}
	return strings.TrimSpace(name[:cut])
}
