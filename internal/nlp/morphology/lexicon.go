package morphology

// Number is the grammatical number feature value.
type Number string

const (
	NumberSingular Number = "Sing"
	NumberPlural   Number = "Plur"
)

// Gender is the grammatical gender feature value.
type Gender string

const (
	GenderMasc Gender = "Masc"
	GenderFem  Gender = "Fem"
)

// verbForm is one conjugated form of a verb in the lexicon.
type verbForm struct {
	lemma  string
	person int // 1..3, 0 when non-finite
	number Number
}

// pronounEntry carries the agreement features of a subject pronoun.
type pronounEntry struct {
	person int
	number Number
}

// subjectPronouns lists the Spanish subject pronouns with their
// person and number. Keys are lowercase.
var subjectPronouns = map[string]pronounEntry{
	"yo":       {1, NumberSingular},
	"tú":       {2, NumberSingular},
	"él":       {3, NumberSingular},
	"ella":     {3, NumberSingular},
	"usted":    {3, NumberSingular},
	"nosotros": {1, NumberPlural},
	"nosotras": {1, NumberPlural},
	"vosotros": {2, NumberPlural},
	"vosotras": {2, NumberPlural},
	"ellos":    {3, NumberPlural},
	"ellas":    {3, NumberPlural},
	"ustedes":  {3, NumberPlural},
}

// otherPronouns are non-subject pronouns tagged PRON without agreement
// features.
var otherPronouns = map[string]struct{}{
	"me": {}, "te": {}, "se": {}, "nos": {}, "os": {}, "le": {}, "les": {},
	"lo": {}, "los": {}, "la": {}, "las": {}, "mí": {}, "ti": {}, "conmigo": {}, "contigo": {},
	"esto": {}, "eso": {}, "aquello": {}, "algo": {}, "nada": {}, "alguien": {}, "nadie": {},
	"quien": {}, "quién": {}, "qué": {}, "cuál": {},
}

type detEntry struct {
	gender Gender
	number Number
}

var determiners = map[string]detEntry{
	"el": {GenderMasc, NumberSingular}, "la": {GenderFem, NumberSingular},
	"los": {GenderMasc, NumberPlural}, "las": {GenderFem, NumberPlural},
	"un": {GenderMasc, NumberSingular}, "una": {GenderFem, NumberSingular},
	"unos": {GenderMasc, NumberPlural}, "unas": {GenderFem, NumberPlural},
	"este": {GenderMasc, NumberSingular}, "esta": {GenderFem, NumberSingular},
	"estos": {GenderMasc, NumberPlural}, "estas": {GenderFem, NumberPlural},
	"ese": {GenderMasc, NumberSingular}, "esa": {GenderFem, NumberSingular},
	"esos": {GenderMasc, NumberPlural}, "esas": {GenderFem, NumberPlural},
	"aquel": {GenderMasc, NumberSingular}, "aquella": {GenderFem, NumberSingular},
	"aquellos": {GenderMasc, NumberPlural}, "aquellas": {GenderFem, NumberPlural},
	"mi": {"", NumberSingular}, "mis": {"", NumberPlural},
	"tus": {"", NumberPlural},
	"su":  {"", NumberSingular}, "sus": {"", NumberPlural},
	"nuestro": {GenderMasc, NumberSingular}, "nuestra": {GenderFem, NumberSingular},
	"nuestros": {GenderMasc, NumberPlural}, "nuestras": {GenderFem, NumberPlural},
}

var prepositions = map[string]struct{}{
	"a": {}, "ante": {}, "bajo": {}, "con": {}, "contra": {}, "de": {}, "desde": {},
	"durante": {}, "en": {}, "entre": {}, "hacia": {}, "hasta": {}, "para": {},
	"por": {}, "según": {}, "sin": {}, "sobre": {}, "tras": {},
}

var conjunctions = map[string]struct{}{
	"y": {}, "e": {}, "o": {}, "u": {}, "pero": {}, "sino": {}, "ni": {},
	"que": {}, "porque": {}, "si": {}, "cuando": {}, "como": {}, "aunque": {},
	"mientras": {}, "pues": {},
}

var adverbs = map[string]struct{}{
	"no": {}, "sí": {}, "muy": {}, "más": {}, "menos": {}, "también": {}, "tampoco": {},
	"siempre": {}, "nunca": {}, "jamás": {}, "bien": {}, "mal": {}, "mejor": {}, "peor": {},
	"aquí": {}, "ahí": {}, "allí": {}, "allá": {}, "cerca": {}, "lejos": {},
	"hoy": {}, "ayer": {}, "mañana": {}, "ahora": {}, "luego": {}, "después": {},
	"antes": {}, "ya": {}, "todavía": {}, "aún": {}, "casi": {}, "solo": {}, "sólo": {},
	"bastante": {}, "demasiado": {}, "mucho": {}, "poco": {},
}

var interjections = map[string]struct{}{
	"hola": {}, "adiós": {}, "gracias": {}, "ay": {}, "uy": {}, "eh": {}, "oh": {},
}

type nounEntry struct {
	gender Gender
}

// commonNouns covers high-frequency vocabulary from beginner lessons.
// Plural forms are derived, not listed.
var commonNouns = map[string]nounEntry{
	"libro": {GenderMasc}, "casa": {GenderFem}, "perro": {GenderMasc}, "gato": {GenderMasc},
	"niño": {GenderMasc}, "niña": {GenderFem}, "escuela": {GenderFem}, "maestro": {GenderMasc},
	"día": {GenderMasc}, "noche": {GenderFem}, "mano": {GenderFem}, "problema": {GenderMasc},
	"agua": {GenderFem}, "tiempo": {GenderMasc}, "año": {GenderMasc}, "vida": {GenderFem},
	"mundo": {GenderMasc}, "hombre": {GenderMasc}, "mujer": {GenderFem}, "amigo": {GenderMasc},
	"amiga": {GenderFem}, "familia": {GenderFem}, "ciudad": {GenderFem}, "país": {GenderMasc},
	"comida": {GenderFem}, "trabajo": {GenderMasc}, "palabra": {GenderFem}, "cosa": {GenderFem},
	"parte": {GenderFem}, "lugar": {GenderMasc}, "semana": {GenderFem}, "mes": {GenderMasc},
	"madre": {GenderFem}, "padre": {GenderMasc}, "hermano": {GenderMasc}, "hermana": {GenderFem},
	"clase": {GenderFem}, "profesor": {GenderMasc}, "profesora": {GenderFem},
	"mesa": {GenderFem}, "silla": {GenderFem}, "puerta": {GenderFem}, "ventana": {GenderFem},
	"coche": {GenderMasc}, "calle": {GenderFem}, "parque": {GenderMasc}, "tienda": {GenderFem},
}

// irregularVerbs maps conjugated forms of frequent irregular verbs to
// their lemma and agreement features. Only present indicative forms are
// listed per verb; regular conjugations are resolved by suffix rules.
var irregularVerbs = map[string]verbForm{
	// ser
	"soy": {"ser", 1, NumberSingular}, "eres": {"ser", 2, NumberSingular},
	"es": {"ser", 3, NumberSingular}, "somos": {"ser", 1, NumberPlural},
	"sois": {"ser", 2, NumberPlural}, "son": {"ser", 3, NumberPlural},
	// estar
	"estoy": {"estar", 1, NumberSingular}, "estás": {"estar", 2, NumberSingular},
	"está": {"estar", 3, NumberSingular}, "estamos": {"estar", 1, NumberPlural},
	"estáis": {"estar", 2, NumberPlural}, "están": {"estar", 3, NumberPlural},
	// tener
	"tengo": {"tener", 1, NumberSingular}, "tienes": {"tener", 2, NumberSingular},
	"tiene": {"tener", 3, NumberSingular}, "tenemos": {"tener", 1, NumberPlural},
	"tenéis": {"tener", 2, NumberPlural}, "tienen": {"tener", 3, NumberPlural},
	// ir
	"voy": {"ir", 1, NumberSingular}, "vas": {"ir", 2, NumberSingular},
	"va": {"ir", 3, NumberSingular}, "vamos": {"ir", 1, NumberPlural},
	"vais": {"ir", 2, NumberPlural}, "van": {"ir", 3, NumberPlural},
	// haber
	"he": {"haber", 1, NumberSingular}, "has": {"haber", 2, NumberSingular},
	"ha": {"haber", 3, NumberSingular}, "hemos": {"haber", 1, NumberPlural},
	"habéis": {"haber", 2, NumberPlural}, "han": {"haber", 3, NumberPlural},
	// hacer
	"hago": {"hacer", 1, NumberSingular}, "haces": {"hacer", 2, NumberSingular},
	"hace": {"hacer", 3, NumberSingular}, "hacemos": {"hacer", 1, NumberPlural},
	"hacéis": {"hacer", 2, NumberPlural}, "hacen": {"hacer", 3, NumberPlural},
	// poder
	"puedo": {"poder", 1, NumberSingular}, "puedes": {"poder", 2, NumberSingular},
	"puede": {"poder", 3, NumberSingular}, "podemos": {"poder", 1, NumberPlural},
	"podéis": {"poder", 2, NumberPlural}, "pueden": {"poder", 3, NumberPlural},
	// querer
	"quiero": {"querer", 1, NumberSingular}, "quieres": {"querer", 2, NumberSingular},
	"quiere": {"querer", 3, NumberSingular}, "queremos": {"querer", 1, NumberPlural},
	"queréis": {"querer", 2, NumberPlural}, "quieren": {"querer", 3, NumberPlural},
	// decir
	"digo": {"decir", 1, NumberSingular}, "dices": {"decir", 2, NumberSingular},
	"dice": {"decir", 3, NumberSingular}, "decimos": {"decir", 1, NumberPlural},
	"decís": {"decir", 2, NumberPlural}, "dicen": {"decir", 3, NumberPlural},
	// ver
	"veo": {"ver", 1, NumberSingular}, "ves": {"ver", 2, NumberSingular},
	"ve": {"ver", 3, NumberSingular}, "vemos": {"ver", 1, NumberPlural},
	"veis": {"ver", 2, NumberPlural}, "ven": {"ver", 3, NumberPlural},
	// dar
	"doy": {"dar", 1, NumberSingular}, "das": {"dar", 2, NumberSingular},
	"da": {"dar", 3, NumberSingular}, "damos": {"dar", 1, NumberPlural},
	"dais": {"dar", 2, NumberPlural}, "dan": {"dar", 3, NumberPlural},
	// saber
	"sé": {"saber", 1, NumberSingular}, "sabes": {"saber", 2, NumberSingular},
	"sabe": {"saber", 3, NumberSingular}, "sabemos": {"saber", 1, NumberPlural},
	"sabéis": {"saber", 2, NumberPlural}, "saben": {"saber", 3, NumberPlural},
	// gustar (defective in learner use)
	"gusta": {"gustar", 3, NumberSingular}, "gustan": {"gustar", 3, NumberPlural},
}

// irregularConjugations is the inverse of irregularVerbs, keyed by
// lemma then person and number, used to suggest the agreeing form.
var irregularConjugations = buildConjugations()

func buildConjugations() map[string]map[int]map[Number]string {
	out := make(map[string]map[int]map[Number]string)
	for form, vf := range irregularVerbs {
		if vf.person == 0 {
			continue
		}
		byPerson, ok := out[vf.lemma]
		if !ok {
			byPerson = make(map[int]map[Number]string)
			out[vf.lemma] = byPerson
		}
		byNumber, ok := byPerson[vf.person]
		if !ok {
			byNumber = make(map[Number]string)
			byPerson[vf.person] = byNumber
		}
		// Accented forms win over misspelling aliases sharing a slot.
		if _, exists := byNumber[vf.number]; !exists {
			byNumber[vf.number] = form
		}
	}
	return out
}

// Conjugate returns the present indicative form of lemma agreeing with
// person and number. Irregular verbs come from the lexicon; regular
// -ar, -er and -ir verbs are conjugated by rule. ok is false when the
// lemma is not a recognizable infinitive.
func Conjugate(lemma string, person int, number Number) (string, bool) {
	if byPerson, ok := irregularConjugations[lemma]; ok {
		if byNumber, ok := byPerson[person]; ok {
			if form, ok := byNumber[number]; ok {
				return form, true
			}
		}
	}
	if len(lemma) < 3 {
		return "", false
	}
	stem, theme := lemma[:len(lemma)-2], lemma[len(lemma)-2:]
	var endings map[int]map[Number]string
	switch theme {
	case "ar":
		endings = map[int]map[Number]string{
			1: {NumberSingular: "o", NumberPlural: "amos"},
			2: {NumberSingular: "as", NumberPlural: "áis"},
			3: {NumberSingular: "a", NumberPlural: "an"},
		}
	case "er":
		endings = map[int]map[Number]string{
			1: {NumberSingular: "o", NumberPlural: "emos"},
			2: {NumberSingular: "es", NumberPlural: "éis"},
			3: {NumberSingular: "e", NumberPlural: "en"},
		}
	case "ir":
		endings = map[int]map[Number]string{
			1: {NumberSingular: "o", NumberPlural: "imos"},
			2: {NumberSingular: "es", NumberPlural: "ís"},
			3: {NumberSingular: "e", NumberPlural: "en"},
		}
	default:
		return "", false
	}
	byNumber, ok := endings[person]
	if !ok {
		return "", false
	}
	suffix, ok := byNumber[number]
	if !ok {
		return "", false
	}
	return stem + suffix, true
}

// SubjectFeatures returns the person and number of a subject pronoun,
// or ok=false when the word is not one.
func SubjectFeatures(word string) (person int, number Number, ok bool) {
	e, ok := subjectPronouns[word]
	if !ok {
		return 0, "", false
	}
	return e.person, e.number, true
}

// nounGender returns the lexicon gender of a singular noun, or a guess
// from its ending.
func nounGender(lemma string) Gender {
	if e, ok := commonNouns[lemma]; ok {
		return e.gender
	}
	if n := len(lemma); n > 0 {
		switch lemma[n-1] {
		case 'a':
			return GenderFem
		case 'o':
			return GenderMasc
		}
	}
	if hasAnySuffix(lemma, "ción", "sión", "dad", "tad", "tud", "umbre") {
		return GenderFem
	}
	return GenderMasc
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if len(s) >= len(suf) && s[len(s)-len(suf):] == suf {
			return true
		}
	}
	return false
}
