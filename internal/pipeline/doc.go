// Package pipeline implements the word-processor markup conversion pipeline.
//
// The stages run strictly in order on one shared node tree:
//   - Sanitizer: comment/script/vendor cleanup and style allow-listing
//   - ListReconstructor: nested lists rebuilt from list-marker paragraphs
//   - TableTransformer: native tables to the CALS column-spec/span model
//   - StructuralNormalizer: title/section, cross-references, emphasis cleanup
//   - Formatter: indented serialization with single-line simple blocks
//
// Later stages assume earlier ones already ran: list reconstruction reads
// the style declarations the sanitizer preserved, and structural
// normalization runs after tables so the CALS containers are exempt from
// empty-element removal.
//
// All stages except the Formatter satisfy Stage and mutate the tree in
// place; the Formatter consumes the finished tree and produces the
// output text.
package pipeline
