package textgen

import (
	"fmt"
	"strings"
)

const promptTemplate = `Transform the following raw product description into a professional product description written in %s. The description MUST always contain these elements:

1. Explain what the product is and what it is used for (for example "is an essential part for keeping your forklift or warehouse truck running at its best").
2. Emphasise quality, durability and reliability (for example "made from high-grade materials that deliver durable, reliable performance even under heavy working conditions").
3. Describe benefits such as easy installation and efficiency (for example "thanks to its precise design and exact fit this part is easy to install and contributes to smooth, efficient operation").
4. Finish with a call to action about productivity (for example "Choose this part to raise productivity in your warehouse and prevent unwanted downtime").

IMPORTANT: use ONLY technical details (dimensions, sizes, specifications such as diameter or length) that appear literally in the raw description. If the raw description contains no technical details, add none. Do NOT invent data, dimensions or specifications that are not in the raw description.

Raw description:
%s

Write only the improved description in 2-3 short paragraphs (about 100 words in total), without any extra explanation or introduction.`

// BuildPrompt renders the rewrite instruction for description.
func BuildPrompt(description, language string) string {
	return fmt.Sprintf(promptTemplate, language, strings.TrimSpace(description))
}
