package profile

import (
	"github.com/hujh08/galfit/internal/param"
	"github.com/hujh08/galfit/internal/record"
)

// Shared key tables of the component block. A profile's own table wins per
// key; keys it does not mention fall back to these.
var (
	baseAliases = map[string][]string{
		"0":  {"name", "modname"},
		"1":  {"x0"},
		"2":  {"y0"},
		"3":  {"mag"},
		"4":  {"re"},
		"5":  {"n"},
		"9":  {"ba"},
		"10": {"pa"},
		"Z":  {"skip"},
	}

	baseComments = map[string]string{
		"0":  "Component type",
		"1":  "Position x, y",
		"3":  "Integrated magnitude",
		"4":  "R_e (effective radius) [pix]",
		"5":  "Sersic index n (de Vaucouleurs n=4)",
		"9":  "Axis ratio (b/a)",
		"10": "Position angle [deg: Up=0, Left=90]",
		"Z":  "Skip this model? (yes=1, no=0)",
	}
)

// profileSpec is the declarative form a profile is registered from.
type profileSpec struct {
	name          string
	keys          []string
	aliases       map[string][]string
	comments      map[string]string
	floatFmt      string
	sky           bool
	needPixelSize bool
}

func (p profileSpec) compile() *Definition {
	aliases := make(map[string][]string, len(p.keys))
	comments := make(map[string]string, len(p.keys))
	examples := make(map[string]any, len(p.keys))
	normalizers := make(map[string]record.Normalizer)
	var required []string

	for _, k := range p.keys {
		if a, ok := p.aliases[k]; ok {
			aliases[k] = a
		} else if a, ok := baseAliases[k]; ok {
			aliases[k] = a
		}
		if c, ok := p.comments[k]; ok {
			comments[k] = c
		} else if c, ok := baseComments[k]; ok {
			comments[k] = c
		}

		switch k {
		case "0":
			examples[k] = ""
		case "Z":
			examples[k] = 0
		default:
			// fit parameters
			examples[k] = param.New(0)
			normalizers[k] = param.Normalize
			if !p.sky {
				required = append(required, k)
			}
		}
	}

	fmtFloat := p.floatFmt
	if fmtFloat == "" {
		fmtFloat = "%.4f"
	}

	schema := record.MustCompile(record.Spec{
		Keys:        p.keys,
		Aliases:     aliases,
		Comments:    comments,
		Examples:    examples,
		Required:    required,
		Defaults:    map[string]any{"0": p.name},
		Normalizers: normalizers,
		Format: record.Format{
			Float: fmtFloat,
			Line2: "%2s) %s",
			Line3: "%2s) %-22s #  %s",
		},
	})

	return &Definition{
		Name:          p.name,
		Schema:        schema,
		Sky:           p.sky,
		NeedPixelSize: p.needPixelSize,
	}
}

func init() {
	for _, p := range []profileSpec{
		{
			name: "sersic",
			keys: []string{"0", "1", "2", "3", "4", "5", "9", "10", "Z"},
		},
		{
			name: "sky",
			keys: []string{"0", "1", "2", "3", "Z"},
			sky:  true,
			aliases: map[string][]string{
				"1": {"bkg"},
				"2": {"dbdx"},
				"3": {"dbdy"},
			},
			comments: map[string]string{
				"1": "Sky background [ADUs]",
				"2": "dsky/dx [ADUs/pix]",
				"3": "dsky/dy [ADUs/pix]",
			},
			floatFmt: "%.3e",
		},
		{
			name: "expdisk",
			keys: []string{"0", "1", "2", "3", "4", "9", "10", "Z"},
			aliases: map[string][]string{
				"4": {"rs"},
			},
			comments: map[string]string{
				"4": "R_s (disk scale-length) [pix]",
			},
		},
		{
			name:          "edgedisk",
			keys:          []string{"0", "1", "2", "3", "4", "5", "10", "Z"},
			needPixelSize: true,
			aliases: map[string][]string{
				"3": {"mu", "sb"},
				"4": {"hs", "dh"},
				"5": {"rs", "dl"},
			},
			comments: map[string]string{
				"3": "central surface brightness [mag/arcsec^2]",
				"4": "disk scale-height [Pixels]",
				"5": "disk scale-length [Pixels]",
			},
		},
		{
			name: "devauc",
			keys: []string{"0", "1", "2", "3", "4", "9", "10", "Z"},
		},
		{
			name: "psf",
			keys: []string{"0", "1", "2", "3", "Z"},
		},
		{
			name:          "nuker",
			keys:          []string{"0", "1", "2", "3", "4", "5", "6", "7", "9", "10", "Z"},
			needPixelSize: true,
			aliases: map[string][]string{
				"3": {"ub"},
				"4": {"rb"},
				"5": {"alpha"},
				"6": {"beta"},
				"7": {"gamma"},
			},
			comments: map[string]string{
				"3": "mu(Rb) [surface brightness mag. at Rb]",
				"4": "Rb [pixels]",
				"5": "alpha (sharpness of transition)",
				"6": "beta (outer powerlaw slope)",
				"7": "gamma (inner powerlaw slope)",
			},
		},
		{
			name: "moffat",
			keys: []string{"0", "1", "2", "3", "4", "5", "9", "10", "Z"},
			aliases: map[string][]string{
				"4": {"fwhm"},
				"5": {"pl"},
			},
			comments: map[string]string{
				"4": "FWHM [Pixels]",
				"5": "powerlaw",
			},
		},
		{
			name:          "ferrer",
			keys:          []string{"0", "1", "2", "3", "4", "5", "6", "9", "10", "Z"},
			needPixelSize: true,
			aliases: map[string][]string{
				"3": {"mu", "sb"},
				"4": {"tr"},
				"5": {"alpha"},
				"6": {"beta"},
			},
			comments: map[string]string{
				"3": "Central surface brightness [mag/arcsec^2]",
				"4": "Outer truncation radius [pix]",
				"5": "Alpha (outer truncation sharpness)",
				"6": "Beta (central slope)",
			},
		},
		{
			name: "gaussian",
			keys: []string{"0", "1", "2", "3", "4", "9", "10", "Z"},
			aliases: map[string][]string{
				"4": {"fwhm"},
			},
			comments: map[string]string{
				"4": "FWHM [Pixels]",
			},
		},
		{
			name:          "king",
			keys:          []string{"0", "1", "2", "3", "4", "5", "6", "9", "10", "Z"},
			needPixelSize: true,
			aliases: map[string][]string{
				"3": {"mu", "sb"},
				"4": {"rc"},
				"5": {"rt"},
				"6": {"alpha"},
			},
			comments: map[string]string{
				"3": "Central surface brightness [mag/arcsec^2]",
				"4": "Rc",
				"5": "Rt",
				"6": "alpha",
			},
		},
	} {
		register(p.compile())
	}

	registerTransform("sersic", "expdisk", sersicToExpdisk)
	registerTransform("sersic", "devauc", sersicToDevauc)
	registerTransform("expdisk", "sersic", expdiskToSersic)
	registerTransform("expdisk", "edgedisk", expdiskToEdgedisk)
	registerTransform("edgedisk", "expdisk", edgediskToExpdisk)
	registerTransform("devauc", "sersic", devaucToSersic)
}
