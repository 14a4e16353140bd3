package classifier

import "strings"

// malaysianSigns is the curated BIM target vocabulary. In-vocabulary
// predictions are more trustworthy than unexpected labels and receive a
// confidence boost.
var malaysianSigns = map[string]struct{}{
	// Pronouns
	"SAYA": {}, "AWAK": {}, "DIA": {}, "KAMI": {}, "MEREKA": {},
	// Polite words
	"TOLONG": {}, "TERIMA KASIH": {}, "MAAF": {}, "SELAMAT": {},
	// Yes / no / can
	"YA": {}, "TIDAK": {}, "BOLEH": {}, "TAK BOLEH": {},
	// Question words
	"APA": {}, "SIAPA": {}, "BILA": {}, "DI MANA": {}, "MENGAPA": {}, "BAGAIMANA": {},
	// Basic info
	"NAMA": {}, "UMUR": {}, "KERJA": {}, "RUMAH": {}, "SEKOLAH": {},
	// Actions
	"MAKAN": {}, "MINUM": {}, "TIDUR": {}, "BANGUN": {},
	// Time of day
	"PAGI": {}, "TENGAH HARI": {}, "PETANG": {}, "MALAM": {},
	"HARI INI": {}, "SEMALAM": {}, "ESOK": {},
	// Qualities
	"BAIK": {}, "TIDAK BAIK": {}, "CANTIK": {}, "HODOH": {},
	"BESAR": {}, "KECIL": {}, "PANJANG": {}, "PENDEK": {},
	// Colors
	"MERAH": {}, "BIRU": {}, "HIJAU": {}, "KUNING": {}, "HITAM": {}, "PUTIH": {},
	// Numbers 1-5
	"SATU": {}, "DUA": {}, "TIGA": {}, "EMPAT": {}, "LIMA": {},
	// Common phrases
	"SELAMAT PAGI": {}, "SELAMAT PETANG": {}, "SELAMAT MALAM": {},
	"APA KHABAR": {}, "SIHAT": {}, "SAKIT": {},
	"LAPAR": {}, "KENYANG": {}, "HAUS": {},
	"PANAS": {}, "SEJUK": {}, "HUJAN": {},
}

// falsePositiveLabels are labels the hosted models emit for background
// noise or training artifacts rather than genuine signs.
var falsePositiveLabels = map[string]struct{}{
	"HEAR": {}, "EAR": {}, "NOISE": {}, "BACKGROUND": {}, "NONE": {}, "NULL": {},
	"IMPORTANT": {}, "ENGLISH": {}, "AMERICAN": {}, "BRITISH": {}, "GENERAL": {},
	"COMMON": {}, "BASIC": {}, "SIMPLE": {}, "STANDARD": {}, "DEFAULT": {},
}

// englishStopwords are common English words. The models were trained on
// mixed corpora, so these indicate a cross-lingual false positive.
var englishStopwords = map[string]struct{}{
	"THE": {}, "AND": {}, "OR": {}, "BUT": {}, "IF": {}, "THEN": {}, "WHEN": {}, "WHERE": {},
	"WHAT": {}, "WHO": {}, "WHY": {}, "HOW": {}, "CAN": {}, "WILL": {}, "WOULD": {}, "SHOULD": {},
	"MUST": {}, "MAY": {}, "MIGHT": {}, "COULD": {}, "DO": {}, "DOES": {}, "DID": {}, "HAVE": {},
	"HAS": {}, "HAD": {}, "IS": {}, "ARE": {}, "WAS": {}, "WERE": {}, "BE": {}, "BEEN": {}, "BEING": {},
}

// NormalizeLabel trims whitespace and uppercases a raw model label.
func NormalizeLabel(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// IsTargetSign reports whether a normalized label is in the BIM vocabulary.
func IsTargetSign(label string) bool {
	_, ok := malaysianSigns[label]
	return ok
}

// FilterReason returns a non-empty reason when a normalized label should be
// rejected as a known false positive.
func FilterReason(label string) string {
	if _, ok := falsePositiveLabels[label]; ok {
		return "known false-positive label"
	}
	if _, ok := englishStopwords[label]; ok {
		return "filtered English word"
	}
	return ""
}
