package jsx

import (
	"regexp"
	"strings"
	"unicode"
)

// htmlToJSX renames HTML attributes whose React prop differs.
var htmlToJSX = map[string]string{
	"class":           "className",
	"for":             "htmlFor",
	"tabindex":        "tabIndex",
	"readonly":        "readOnly",
	"maxlength":       "maxLength",
	"minlength":       "minLength",
	"colspan":         "colSpan",
	"rowspan":         "rowSpan",
	"cellpadding":     "cellPadding",
	"cellspacing":     "cellSpacing",
	"contenteditable": "contentEditable",
	"crossorigin":     "crossOrigin",
	"autocomplete":    "autoComplete",
	"autofocus":       "autoFocus",
	"autoplay":        "autoPlay",
	"enctype":         "encType",
	"srcset":          "srcSet",
	"usemap":          "useMap",
	"frameborder":     "frameBorder",
	"allowfullscreen": "allowFullScreen",
	"datetime":        "dateTime",
	"accept-charset":  "acceptCharset",
	"http-equiv":      "httpEquiv",
	"playsinline":     "playsInline",
	"novalidate":      "noValidate",
	"formaction":      "formAction",
	"spellcheck":      "spellCheck",
	"referrerpolicy":  "referrerPolicy",
	"fetchpriority":   "fetchPriority",
	"inputmode":       "inputMode",
	"enterkeyhint":    "enterKeyHint",
	"itemprop":        "itemProp",
	"itemscope":       "itemScope",
	"itemtype":        "itemType",
	"xlink:href":      "xlinkHref",
	"xml:space":       "xmlSpace",
	"xml:lang":        "xmlLang",
	"xmlns:xlink":     "xmlnsXlink",
}

// jsxToHTML is the reverse of htmlToJSX.
var jsxToHTML = func() map[string]string {
	m := make(map[string]string, len(htmlToJSX))
	for k, v := range htmlToJSX {
		m[v] = k
	}
	return m
}()

// svgNativeCamel lists SVG attributes that are camelCase in markup already.
var svgNativeCamel = map[string]bool{
	"attributeName": true, "attributeType": true, "baseFrequency": true, "baseProfile": true,
	"calcMode": true, "clipPathUnits": true, "diffuseConstant": true, "edgeMode": true,
	"filterUnits": true, "glyphRef": true, "gradientTransform": true, "gradientUnits": true,
	"kernelMatrix": true, "kernelUnitLength": true, "keyPoints": true, "keySplines": true,
	"keyTimes": true, "lengthAdjust": true, "limitingConeAngle": true, "markerHeight": true,
	"markerUnits": true, "markerWidth": true, "maskContentUnits": true, "maskUnits": true,
	"numOctaves": true, "pathLength": true, "patternContentUnits": true, "patternTransform": true,
	"patternUnits": true, "pointsAtX": true, "pointsAtY": true, "pointsAtZ": true,
	"preserveAlpha": true, "preserveAspectRatio": true, "primitiveUnits": true, "refX": true,
	"refY": true, "repeatCount": true, "repeatDur": true, "requiredExtensions": true,
	"requiredFeatures": true, "specularConstant": true, "specularExponent": true, "spreadMethod": true,
	"startOffset": true, "stdDeviation": true, "stitchTiles": true, "surfaceScale": true,
	"systemLanguage": true, "tableValues": true, "targetX": true, "targetY": true,
	"textLength": true, "viewBox": true, "viewTarget": true, "xChannelSelector": true,
	"yChannelSelector": true, "zoomAndPan": true,
}

// booleanAttrs are HTML attributes whose presence alone is meaningful.
var booleanAttrs = map[string]bool{
	"allowfullscreen": true, "async": true, "autofocus": true, "autoplay": true,
	"checked": true, "controls": true, "default": true, "defer": true,
	"disabled": true, "formnovalidate": true, "hidden": true, "inert": true,
	"ismap": true, "itemscope": true, "loop": true, "multiple": true,
	"muted": true, "nomodule": true, "novalidate": true, "open": true,
	"playsinline": true, "readonly": true, "required": true, "reversed": true,
	"selected": true,
}

// uncontrolled lists the form props React only honours as defaults on some
// tags. Everywhere else value and checked pass through unchanged.
var uncontrolled = map[string]struct {
	prop string
	tags map[string]bool
}{
	"value":   {"defaultValue", map[string]bool{"input": true, "textarea": true, "select": true}},
	"checked": {"defaultChecked", map[string]bool{"input": true}},
}

// jsxAttrName matches the JSX attribute grammar: an identifier that may contain
// dashes, optionally prefixed by a namespace.
var jsxAttrName = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$-]*(:[A-Za-z_$][A-Za-z0-9_$-]*)?$`)

// ValidAttrName reports whether name can be written as a JSX attribute.
func ValidAttrName(name string) bool {
	return jsxAttrName.MatchString(name)
}

// JSXAttrName maps an HTML attribute name on tag to its React prop name.
func JSXAttrName(tag, name string, inSVG bool) string {
	if u, ok := uncontrolled[name]; ok && u.tags[tag] {
		return u.prop
	}
	if v, ok := htmlToJSX[name]; ok {
		return v
	}
	if strings.HasPrefix(name, "data-") || strings.HasPrefix(name, "aria-") {
		return name
	}
	if inSVG && strings.Contains(name, "-") {
		return camelCase(name)
	}
	return name
}

// HTMLAttrName maps a React prop name on tag back to its markup attribute name.
func HTMLAttrName(tag, name string, inSVG bool) string {
	for attr, u := range uncontrolled {
		if u.prop == name && u.tags[tag] {
			return attr
		}
	}
	if v, ok := jsxToHTML[name]; ok {
		return v
	}
	if strings.HasPrefix(name, "data-") || strings.HasPrefix(name, "aria-") {
		return name
	}
	if inSVG {
		if svgNativeCamel[name] || !hasUpper(name) {
			return name
		}
		return kebabCase(name)
	}
	return strings.ToLower(name)
}

// StyleKey converts a CSS property name to a style object key:
// "background-color" -> "backgroundColor", "-webkit-mask" -> "WebkitMask",
// "-ms-grid" -> "msGrid". Custom properties are kept verbatim.
func StyleKey(prop string) string {
	if strings.HasPrefix(prop, "--") {
		return prop
	}
	prop = strings.ToLower(prop)
	if strings.HasPrefix(prop, "-ms-") {
		return camelCase(prop[1:])
	}
	if strings.HasPrefix(prop, "-") {
		c := camelCase(prop[1:])
		return strings.ToUpper(c[:1]) + c[1:]
	}
	return camelCase(prop)
}

// CSSProperty converts a style object key back to a CSS property name.
func CSSProperty(key string) string {
	if strings.HasPrefix(key, "--") {
		return key
	}
	if strings.HasPrefix(key, "ms") && len(key) > 2 && unicode.IsUpper(rune(key[2])) {
		return "-" + kebabCase(key)
	}
	if len(key) > 0 && unicode.IsUpper(rune(key[0])) {
		return "-" + kebabCase(key)
	}
	return kebabCase(key)
}

func camelCase(s string) string {
	parts := strings.Split(s, "-")
	var sb strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 || sb.Len() == 0 {
			sb.WriteString(p)
			continue
		}
		sb.WriteString(strings.ToUpper(p[:1]))
		sb.WriteString(p[1:])
	}
	return sb.String()
}

func kebabCase(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func hasUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}
