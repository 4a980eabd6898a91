package agents

import "fmt"

func researchPrompt(topic string) string {
	return fmt.Sprintf(
		"Research '%s' using web search.\n\n"+
			"Return EXACTLY 3 items in the format below. Be concise.\n\n"+
			"Format for each item:\n"+
			"- Fact: <one clear factual statement, <= 18 words>\n"+
			"  Evidence: <1 short paraphrased line OR a short quote <= 20 words>\n"+
			"  Source: <one URL>\n\n"+
			"Rules:\n"+
			"- Use authoritative sources (official docs, universities, reputable orgs).\n"+
			"- Evidence must clearly support the Fact.\n"+
			"- Do NOT add extra sections.\n",
		topic)
}

func explainPrompt(memoryText, historyText, topic string) string {
	return fmt.Sprintf(
		"You are continuing an ongoing conversation.\n\n"+
			"=== RELEVANT PAST USER MEMORY (RAG) ===\n%s\n\n"+
			"=== RECENT CHAT HISTORY ===\n%s\n\n"+
			"Now answer the user's latest question:\n%s\n\n"+
			"Rules:\n"+
			"- Use RAG memory if it is relevant\n"+
			"- Otherwise ignore it\n"+
			"- Prefer personalized answers using past context\n"+
			"- No new facts beyond research results\n"+
			"- Clear and practical explanation\n",
		memoryText, historyText, topic)
}

func followupPrompt(memoryText, historyText, topic string) string {
	return fmt.Sprintf(
		"You are continuing a conversation.\n\n"+
			"=== RELEVANT PAST MEMORY ===\n%s\n\n"+
			"=== RECENT CHAT ===\n%s\n\n"+
			"User now asks: %s\n\n"+
			"Rules:\n"+
			"- Use memory if relevant\n"+
			"- Assume pronouns refer to last AI answer\n"+
			"- Expand helpfully\n"+
			"- Be concise\n",
		memoryText, historyText, topic)
}

const factCheckPrompt = "You will receive:\n" +
	"1) Research items (Fact + Evidence + Source)\n" +
	"2) An explanation written from that research\n\n" +
	"Your job:\n" +
	"- Copy the full explanation exactly as-is.\n" +
	"- Identify the TOP 3 major claims in the explanation.\n" +
	"- For each claim, decide whether it is:\n" +
	"  Supported (clearly backed by provided Evidence)\n" +
	"  Weak (partially supported / too vague / missing support)\n" +
	"  Not Supported (not backed by provided Evidence)\n\n" +
	"IMPORTANT RULES:\n" +
	"- Do NOT browse the web.\n" +
	"- Use ONLY the provided Evidence/Source items.\n" +
	"- If the claim needs external verification beyond the given sources, mark Weak.\n\n" +
	"Output EXACTLY in this format:\n" +
	"=== Explanation ===\n" +
	"<paste full explanation>\n\n" +
	"=== Fact Check ===\n" +
	"1) Claim: ...\n" +
	"   Verdict: Supported/Weak/Not Supported\n" +
	"   Evidence Used: <paste the matching Evidence line>\n" +
	"2) ...\n" +
	"3) ...\n\n" +
	"=== Confidence ===\n" +
	"<single number 0-100>\n" +
	"Reason (1 line): <why that score>\n"
