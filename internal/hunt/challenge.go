package hunt

import (
	"encoding/base64"
	"strings"
	"time"
)

// Challenges is the content of the three rounds.
type Challenges struct {
	Links  LinkHunt
	Code   CodeFix
	Cipher Cipher
}

// LinkHunt is round 1: find the one real link among decoys.
type LinkHunt struct {
	RealTitle   string
	DecoyTitles []string
	Hint        string
}

// Catalog builds the round 1 clue set. IDs are assigned by newID.
func (l LinkHunt) Catalog(newID func() string) []Clue {
	clues := make([]Clue, 0, len(l.DecoyTitles)+1)
	for i, title := range l.DecoyTitles {
		clues = append(clues, Clue{ID: newID(), Round: RoundLinks, Order: i + 1, Title: title})
	}
	return append(clues, Clue{
		ID:       newID(),
		Round:    RoundLinks,
		Order:    len(l.DecoyTitles) + 1,
		Title:    l.RealTitle,
		IsAnswer: true,
	})
}

// CodeFix is round 2: repair a JavaScript function until every test case
// produces its expected output.
type CodeFix struct {
	Title       string
	Description string
	InitialCode string
	Hint        string
	TestCases   []TestCase
	Timeout     time.Duration

	// MaxHeapGrowth bounds how far the process heap may grow while one test
	// case runs, in bytes. Zero means the package default.
	MaxHeapGrowth uint64
}

type TestCase struct {
	Input    string `json:"input"`
	Expected string `json:"expectedOutput"`
}

type TestResult struct {
	Input    string `json:"input"`
	Expected string `json:"expectedOutput"`
	Actual   string `json:"actualOutput"`
	Passed   bool   `json:"passed"`
}

// Cipher is round 3: decrypt a message.
type Cipher struct {
	Title       string
	Description string
	Method      string
	Ciphertext  string
	Shift       int
	// Target is the accepted answer. When empty the decoded ciphertext is used.
	Target      string
	Hint        string
	KeyHint     string
}

const (
	CipherCaesar = "caesar"
	CipherBase64 = "base64"
)

// Plaintext decodes the ciphertext with the configured method.
func (c Cipher) Plaintext() (string, error) {
	switch c.Method {
	case CipherCaesar:
		return caesarShift(c.Ciphertext, -c.Shift), nil
	case CipherBase64:
		b, err := base64.StdEncoding.DecodeString(c.Ciphertext)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return "", newError(ErrValidation, "unsupported cipher method "+c.Method)
	}
}

// Check reports whether the attempt matches the target, ignoring case and
// surrounding whitespace.
func (c Cipher) Check(attempt string) bool {
	want := c.Target
	if want == "" {
		var err error
		if want, err = c.Plaintext(); err != nil {
			return false
		}
	}
	return strings.EqualFold(strings.TrimSpace(attempt), strings.TrimSpace(want))
}

func caesarShift(s string, shift int) string {
	shift = ((shift % 26) + 26) % 26
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z':
			return 'A' + (r-'A'+rune(shift))%26
		case r >= 'a' && r <= 'z':
			return 'a' + (r-'a'+rune(shift))%26
		}
		return r
	}, s)
}

// Hints returns the hint texts revealed for r.
func (c Challenges) Hints(r Round) []string {
	switch r {
	case RoundLinks:
		return []string{c.Links.Hint}
	case RoundCode:
		return []string{c.Code.Hint}
	case RoundCipher:
		return []string{c.Cipher.Hint, c.Cipher.KeyHint}
	}
	return nil
}

// DefaultChallenges is the content shipped with the event.
func DefaultChallenges() Challenges {
	return Challenges{
		Links: LinkHunt{
			RealTitle: "This way to continue",
			DecoyTitles: []string{
				"Continue to next round",
				"This is the path forward",
				"Click to proceed",
				"Secret entrance ahead",
				"Gateway to next challenge",
				"Hidden path revealed",
				"Unlock next level",
				"Follow this link",
				"Journey continues here",
				"Access next stage",
				"The way forward",
				"Enter here to continue",
				"Proceed to next round",
				"Advance to next stage",
				"Click for next challenge",
				"Begin the next test",
				"Unlock the next puzzle",
				"Next stage awaits",
				"Continue your journey",
			},
			Hint: "The true path reveals itself to those who observe carefully. Notice subtle differences in behavior when your cursor approaches.",
		},
		Code: CodeFix{
			Title:       "Fix the Broken Function",
			Description: "This function is supposed to find the missing number in an array containing numbers from 1 to n (with one number missing). The function has some bugs. Can you fix it?",
			InitialCode: `function findMissingNumber(nums) {
  let n = nums.length + 1;
  let expectedSum = n * (n + 1) / 2;
  let actualSum = 0;
  for (let i = 1; i <= nums.length; i++) {
    actualSum += nums[i];
  }
  return expectedSum - actualSum;
}`,
			Hint: "Array indices are zero-based. Also, check if you're calculating the sum correctly.",
			TestCases: []TestCase{
				{Input: "[1, 2, 4, 5]", Expected: "3"},
				{Input: "[1, 3]", Expected: "2"},
				{Input: "[2, 3, 4, 5, 6]", Expected: "1"},
			},
			Timeout: 2 * time.Second,
		},
		Cipher: Cipher{
			Title:       "Decode the Secret",
			Description: "This message has been encrypted using a Caesar cipher. Each letter has been shifted a certain number of positions in the alphabet. Decrypt it to reveal the final message.",
			Method:      CipherCaesar,
			Ciphertext:  "HTSLWFYZQFYNTSX, DTZ MFAJ HTRUQJYJI YMJ MYYUX KNSI HMFQQJSLJ!",
			Shift:       5,
			Target:      "CONGRATULATIONS, YOU HAVE COMPLETED THE HTTPS FIND CHALLENGE!",
			Hint:        "The Caesar cipher shifts each letter in the alphabet. Try different shift values (1-25).",
			KeyHint:     "The shift value is 5 positions backward in the alphabet.",
		},
	}
}
