package routesplit

import "bytes"

// Reformat splits a single-line export into token lines, one tag boundary per
// line. Every line except possibly the last ends with '>'; the last line holds
// whatever trailed the final '>' (typically a newline) so that concatenating
// the result reproduces data exactly.
//
// Data with no '>' at all cannot be tokenized and yields a *MalformedInputError
// with an empty File; callers that know the file name should set it.
func Reformat(data []byte) ([]string, error) {
	if bytes.IndexByte(data, '>') < 0 {
		return nil, &MalformedInputError{}
	}

	lines := make([]string, 0, bytes.Count(data, []byte{'>'})+1)
	for len(data) > 0 {
		i := bytes.IndexByte(data, '>')
		if i < 0 {
			lines = append(lines, string(data))
			break
		}
		lines = append(lines, string(data[:i+1]))
		data = data[i+1:]
	}
	return lines, nil
}
