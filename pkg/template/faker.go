package template

import (
	"fmt"
	mathrand "math/rand/v2"
	"sort"
	"strconv"
	"strings"
	"time"
)

// fakeFunc produces one fake value. args come from the template call, e.g.
// {{faker.number.int 1 10}}.
type fakeFunc func(rng *mathrand.Rand, args []any) (any, error)

// noArgs adapts a generator that takes no arguments.
func noArgs(fn func(rng *mathrand.Rand) string) fakeFunc {
	return func(rng *mathrand.Rand, _ []any) (any, error) { return fn(rng), nil }
}

func pick(items []string) fakeFunc {
	return func(rng *mathrand.Rand, _ []any) (any, error) { return rngPick(rng, items), nil }
}

// fakers is keyed by "<namespace>.<method>", following the faker-js layout
// so that {{faker.person.firstName}} reads the way users expect.
var fakers = map[string]fakeFunc{
	"person.firstName": pick(fakerFirstNames),
	"person.lastName":  pick(fakerLastNames),
	"person.fullName":  noArgs(fakerFullName),
	"person.jobTitle":  noArgs(fakerJobTitle),

	"internet.email":      noArgs(fakerEmail),
	"internet.userName":   noArgs(fakerUserName),
	"internet.url":        noArgs(fakerURL),
	"internet.domainName": pick(fakerDomains),
	"internet.ipv4":       noArgs(fakerIPv4),
	"internet.ipv6":       noArgs(fakerIPv6),
	"internet.mac":        noArgs(fakerMACAddress),
	"internet.userAgent":  pick(fakerUserAgents),

	"location.streetAddress": noArgs(fakerStreetAddress),
	"location.city":          pick(fakerCities),
	"location.state":         pick(fakerStates),
	"location.country":       pick(fakerCountries),
	"location.zipCode":       noArgs(fakerZipCode),

	"phone.number": noArgs(fakerPhone),

	"company.name": pick(fakerCompanies),

	"commerce.productName": noArgs(fakerProductName),
	"commerce.price":       noArgs(fakerPrice),
	"commerce.department":  pick(fakerDepartments),

	"color.human": pick(fakerColors),

	"finance.creditCardNumber": noArgs(fakerCreditCard),
	"finance.currencyCode":     pick(fakerCurrencyCodes),
	"finance.iban":             noArgs(fakerIBAN),
	"finance.amount":           noArgs(fakerPrice),

	"string.uuid":         func(rng *mathrand.Rand, _ []any) (any, error) { return rngUUID(rng), nil },
	"string.alphanumeric": fakeAlphanumeric,

	"number.int":   fakeNumberInt,
	"number.float": fakeNumberFloat,

	"datatype.boolean": func(rng *mathrand.Rand, _ []any) (any, error) { return rngIntN(rng, 2) == 1, nil },

	"date.past":   fakeDate(-1),
	"date.future": fakeDate(1),
	"date.recent": fakeRecentDate,

	"lorem.word":      pick(fakerLoremWords),
	"lorem.words":     fakeLoremWords,
	"lorem.sentence":  func(rng *mathrand.Rand, _ []any) (any, error) { return fakerSentence(rng), nil },
	"lorem.paragraph": fakeParagraph,

	"system.mimeType": pick(fakerMIMETypes),
	"system.fileExt":  pick(fakerFileExtensions),

	"identity.ssn":      noArgs(fakerSSN),
	"identity.passport": noArgs(fakerPassport),
}

// FakerNames lists every supported generator, sorted.
func FakerNames() []string {
	names := make([]string, 0, len(fakers))
	for k := range fakers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func generateFake(path []string, rng *mathrand.Rand, args []any, offset int) (any, error) {
	name := strings.Join(path, ".")
	fn, ok := fakers[name]
	if !ok {
		return nil, errorf(offset, "unknown faker generator %q", "faker."+name)
	}
	v, err := fn(rng, args)
	if err != nil {
		return nil, errorf(offset, "faker.%s: %v", name, err)
	}
	return v, nil
}

func fakerFullName(rng *mathrand.Rand) string {
	return rngPick(rng, fakerFirstNames) + " " + rngPick(rng, fakerLastNames)
}

func fakerJobTitle(rng *mathrand.Rand) string {
	return rngPick(rng, fakerJobLevels) + " " + rngPick(rng, fakerJobFields) + " " + rngPick(rng, fakerJobRoles)
}

func fakerUserName(rng *mathrand.Rand) string {
	return strings.ToLower(rngPick(rng, fakerFirstNames)) + strconv.Itoa(rngIntN(rng, 1000))
}

func fakerEmail(rng *mathrand.Rand) string {
	return fakerUserName(rng) + "@" + rngPick(rng, fakerDomains)
}

func fakerURL(rng *mathrand.Rand) string {
	return "https://" + rngPick(rng, fakerDomains) + "/" + rngPick(rng, fakerLoremWords)
}

func fakerStreetAddress(rng *mathrand.Rand) string {
	return fmt.Sprintf("%d %s", rngIntN(rng, 9999)+1, rngPick(rng, fakerStreets))
}

func fakerZipCode(rng *mathrand.Rand) string {
	return fmt.Sprintf("%05d", rngIntN(rng, 100000))
}

func fakerPhone(rng *mathrand.Rand) string {
	return fmt.Sprintf("+1-%03d-%03d-%04d", rngIntN(rng, 900)+100, rngIntN(rng, 900)+100, rngIntN(rng, 10000))
}

func fakerProductName(rng *mathrand.Rand) string {
	return rngPick(rng, fakerProductAdjectives) + " " +
		rngPick(rng, fakerProductMaterials) + " " +
		rngPick(rng, fakerProductNouns)
}

func fakerSentence(rng *mathrand.Rand) string {
	words := loremWords(rng, 4+rngIntN(rng, 6))
	return strings.ToUpper(words[:1]) + words[1:] + "."
}

func loremWords(rng *mathrand.Rand, n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = rngPick(rng, fakerLoremWords)
	}
	return strings.Join(words, " ")
}

func fakeLoremWords(rng *mathrand.Rand, args []any) (any, error) {
	n := 3
	if len(args) > 0 {
		var err error
		if n, err = toInt(args[0]); err != nil {
			return nil, err
		}
	}
	if n <= 0 {
		return "", nil
	}
	return loremWords(rng, n), nil
}

func fakeParagraph(rng *mathrand.Rand, _ []any) (any, error) {
	sentences := make([]string, 3+rngIntN(rng, 3))
	for i := range sentences {
		sentences[i] = fakerSentence(rng)
	}
	return strings.Join(sentences, " "), nil
}

func fakeAlphanumeric(rng *mathrand.Rand, args []any) (any, error) {
	n := 10
	if len(args) > 0 {
		var err error
		if n, err = toInt(args[0]); err != nil {
			return nil, err
		}
	}
	return randomAlphanumeric(rng, n), nil
}

// fakeNumberInt returns an int in [min, max]; defaults to [0, 1000].
func fakeNumberInt(rng *mathrand.Rand, args []any) (any, error) {
	lo, hi := 0, 1000
	switch len(args) {
	case 0:
	case 1:
		var err error
		if hi, err = toInt(args[0]); err != nil {
			return nil, err
		}
	default:
		var err error
		if lo, err = toInt(args[0]); err != nil {
			return nil, err
		}
		if hi, err = toInt(args[1]); err != nil {
			return nil, err
		}
	}
	return randomInt(rng, lo, hi)
}

func fakeNumberFloat(rng *mathrand.Rand, args []any) (any, error) {
	return helperRandomFloat(&Context{Rand: rng}, args)
}

// fakeDate returns an RFC3339 time up to a year in the past (dir < 0) or
// the future.
func fakeDate(dir int) fakeFunc {
	return func(rng *mathrand.Rand, _ []any) (any, error) {
		offset := time.Duration(rngIntN(rng, 365*24*3600)+1) * time.Second
		return time.Now().UTC().Add(time.Duration(dir) * offset).Format(time.RFC3339), nil
	}
}

func fakeRecentDate(rng *mathrand.Rand, _ []any) (any, error) {
	offset := time.Duration(rngIntN(rng, 24*3600)+1) * time.Second
	return time.Now().UTC().Add(-offset).Format(time.RFC3339), nil
}

func randomInt(rng *mathrand.Rand, lo, hi int) (int, error) {
	if lo > hi {
		return 0, fmt.Errorf("min %d is greater than max %d", lo, hi)
	}
	return lo + rngIntN(rng, hi-lo+1), nil
}

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func randomAlphanumeric(rng *mathrand.Rand, n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = alphanumeric[rngIntN(rng, len(alphanumeric))]
	}
	return string(b)
}
