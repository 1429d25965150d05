package microsoft

// API hosts.
const (
	HostGlobal = "api.cognitive.microsofttranslator.com"
	HostUS     = "api-nam.cognitive.microsofttranslator.com"
	HostEurope = "api-eur.cognitive.microsofttranslator.com"
	HostAsia   = "api-apc.cognitive.microsofttranslator.com"
)

// Hosts maps short host names accepted in configuration to API hosts.
var Hosts = map[string]string{
	"global": HostGlobal,
	"us":     HostUS,
	"europe": HostEurope,
	"asia":   HostAsia,
}

// Translation categories.
const (
	CategoryGeneral    = "general"
	CategoryTechnology = "tech"
)

// Categories lists the known translation categories.
var Categories = []string{CategoryGeneral, CategoryTechnology}

// RegionGlobal is the default subscription region.
const RegionGlobal = "global"

// Regions lists the Azure regions a Translator resource can live in.
var Regions = []string{
	RegionGlobal,
	"australiaeast",
	"brazilsouth",
	"canadacentral",
	"centralindia",
	"centralus",
	"centraluseuap",
	"eastasia",
	"eastus",
	"eastus2",
	"francecentral",
	"japaneast",
	"japanwest",
	"koreacentral",
	"northcentralus",
	"northeurope",
	"southcentralus",
	"southeastasia",
	"uksouth",
	"westcentralus",
	"westeurope",
	"westus",
	"westus2",
	"southafricanorth",
}

// Locales maps the Translator language codes to their display names.
var Locales = map[string]string{
	"af":       "Afrikaans",
	"am":       "Amharic",
	"ar":       "Arabic",
	"as":       "Assamese",
	"az":       "Azerbaijani",
	"bg":       "Bulgarian",
	"bn":       "Bangla",
	"bs":       "Bosnian",
	"ca":       "Catalan",
	"cs":       "Czech",
	"cy":       "Welsh",
	"da":       "Danish",
	"de":       "German",
	"el":       "Greek",
	"en":       "English",
	"es":       "Spanish",
	"et":       "Estonian",
	"fa":       "Persian",
	"fi":       "Finnish",
	"fil":      "Filipino",
	"fj":       "Fijian",
	"fr":       "French",
	"fr-CA":    "French (Canada)",
	"ga":       "Irish",
	"gu":       "Gujarati",
	"he":       "Hebrew",
	"hi":       "Hindi",
	"hr":       "Croatian",
	"ht":       "Haitian Creole",
	"hu":       "Hungarian",
	"hy":       "Armenian",
	"id":       "Indonesian",
	"is":       "Icelandic",
	"it":       "Italian",
	"iu":       "Inuktitut",
	"ja":       "Japanese",
	"kk":       "Kazakh",
	"km":       "Khmer",
	"kmr":      "Kurdish (Northern)",
	"kn":       "Kannada",
	"ko":       "Korean",
	"ku":       "Kurdish (Central)",
	"lo":       "Lao",
	"lt":       "Lithuanian",
	"lv":       "Latvian",
	"lzh":      "Chinese (Literary)",
	"mg":       "Malagasy",
	"mi":       "Māori",
	"ml":       "Malayalam",
	"mr":       "Marathi",
	"ms":       "Malay",
	"mt":       "Maltese",
	"mww":      "Hmong Daw",
	"my":       "Myanmar (Burmese)",
	"nb":       "Norwegian",
	"ne":       "Nepali",
	"nl":       "Dutch",
	"or":       "Odia",
	"otq":      "Querétaro Otomi",
	"pa":       "Punjabi",
	"pl":       "Polish",
	"prs":      "Dari",
	"ps":       "Pashto",
	"pt":       "Portuguese (Brazil)",
	"pt-PT":    "Portuguese (Portugal)",
	"ro":       "Romanian",
	"ru":       "Russian",
	"sk":       "Slovak",
	"sl":       "Slovenian",
	"sm":       "Samoan",
	"sq":       "Albanian",
	"sr-Cyrl":  "Serbian (Cyrillic)",
	"sr-Latn":  "Serbian (Latin)",
	"sv":       "Swedish",
	"sw":       "Swahili",
	"ta":       "Tamil",
	"te":       "Telugu",
	"th":       "Thai",
	"ti":       "Tigrinya",
	"tlh-Latn": "Klingon (Latin)",
	"tlh-Piqd": "Klingon (pIqaD)",
	"to":       "Tongan",
	"tr":       "Turkish",
	"ty":       "Tahitian",
	"uk":       "Ukrainian",
	"ur":       "Urdu",
	"vi":       "Vietnamese",
	"yua":      "Yucatec Maya",
	"yue":      "Cantonese (Traditional)",
	"zh-Hans":  "Chinese Simplified",
	"zh-Hant":  "Chinese Traditional",
}

// localeCodes returns the keys of Locales.
func localeCodes() []string {
	codes := make([]string, 0, len(Locales))
	for c := range Locales {
		codes = append(codes, c)
	}
	return codes
}
