package serialize

// standardHTMLTags is the fixed 125-element list of standard HTML tag
// names (spec.md §6), used to compute is_custom.
var standardHTMLTags = map[string]struct{}{
	"A": {}, "ABBR": {}, "ACRONYM": {}, "ADDRESS": {}, "APPLET": {}, "AREA": {},
	"ARTICLE": {}, "ASIDE": {}, "AUDIO": {}, "B": {}, "BASE": {}, "BASEFONT": {},
	"BDI": {}, "BDO": {}, "BIG": {}, "BLOCKQUOTE": {}, "BODY": {}, "BR": {},
	"BUTTON": {}, "CANVAS": {}, "CAPTION": {}, "CENTER": {}, "CITE": {}, "CODE": {},
	"COL": {}, "COLGROUP": {}, "DATA": {}, "DATALIST": {}, "DD": {}, "DEL": {},
	"DETAILS": {}, "DFN": {}, "DIALOG": {}, "DIR": {}, "DIV": {}, "DL": {}, "DT": {},
	"EM": {}, "EMBED": {}, "FIELDSET": {}, "FIGCAPTION": {}, "FIGURE": {}, "FONT": {},
	"FOOTER": {}, "FORM": {}, "FRAME": {}, "FRAMESET": {},
	"H1": {}, "H2": {}, "H3": {}, "H4": {}, "H5": {}, "H6": {},
	"HEAD": {}, "HEADER": {}, "HGROUP": {}, "HR": {}, "HTML": {}, "I": {},
	"IFRAME": {}, "IMG": {}, "INPUT": {}, "INS": {}, "KBD": {}, "LABEL": {},
	"LEGEND": {}, "LI": {}, "LINK": {}, "MAIN": {}, "MAP": {}, "MARK": {}, "MENU": {},
	"META": {}, "METER": {}, "NAV": {}, "NOFRAMES": {}, "NOSCRIPT": {}, "OBJECT": {},
	"OL": {}, "OPTGROUP": {}, "OPTION": {}, "OUTPUT": {}, "P": {}, "PARAM": {},
	"PICTURE": {}, "PRE": {}, "PROGRESS": {}, "Q": {}, "RP": {}, "RT": {}, "RUBY": {},
	"S": {}, "SAMP": {}, "SCRIPT": {}, "SEARCH": {}, "SECTION": {}, "SELECT": {},
	"SMALL": {}, "SOURCE": {}, "SPAN": {}, "STRIKE": {}, "STRONG": {}, "STYLE": {},
	"SUB": {}, "SUMMARY": {}, "SUP": {}, "SVG": {}, "TABLE": {}, "TBODY": {}, "TD": {},
	"TEMPLATE": {}, "TEXTAREA": {}, "TFOOT": {}, "TH": {}, "THEAD": {}, "TIME": {},
	"TITLE": {}, "TR": {}, "TRACK": {}, "TT": {}, "U": {}, "UL": {}, "VAR": {},
	"VIDEO": {}, "WBR": {},
}

// IsStandardHTMLTag reports whether name (already uppercased) is one of
// the 125 standard HTML tag names.
func IsStandardHTMLTag(name string) bool {
	_, ok := standardHTMLTags[name]
	return ok
}
