package knowledge

var defaultItems = []Item{
	// App Usage
	{
		ID:       "app-1",
		Category: "App Usage",
		Question: "How do I generate images?",
		Answer:   `To generate images, you can either switch to "Image Mode" in the Creative Studio menu, or simply ask me to "Generate an image of..." in the chat. I will automatically handle the request using the visual generation model.`,
		Keywords: []string{"generate", "image", "picture", "draw", "create", "photo", "visual"},
	},
	{
		ID:       "app-2",
		Category: "App Usage",
		Question: `What is "Smart (Thinking)" mode?`,
		Answer:   `Smart (Thinking) mode uses the advanced reasoning model. It is designed for complex STEM problems, math, coding, and logic puzzles. It takes a moment to "think" before providing a final answer to ensure high accuracy.`,
		Keywords: []string{"smart", "thinking", "mode", "model", "reasoning", "math", "complex", "hard", "logic"},
	},
	{
		ID:       "app-3",
		Category: "App Usage",
		Question: "How do I use the Text-to-Speech feature?",
		Answer:   `To hear a response read aloud, click the "Volume" (Speaker) icon at the top right of any AI message bubble. You can control the playback speed (0.5x to 2x) using the audio controls that appear.`,
		Keywords: []string{"audio", "speech", "voice", "read", "listen", "hear", "sound", "talk"},
	},
	{
		ID:       "app-4",
		Category: "App Usage",
		Question: "Is my chat history private?",
		Answer:   "Yes. EduAssist AI keeps your chat history in your own storage space, separate from other users. Your personal conversations are not used for training purposes.",
		Keywords: []string{"privacy", "private", "history", "data", "store", "save"},
	},

	// Study Tips
	{
		ID:       "study-1",
		Category: "Study Tips",
		Question: "What is the Pomodoro Technique?",
		Answer:   `The Pomodoro Technique is a time management method developed by Francesco Cirillo. It uses a timer to break work into intervals, traditionally 25 minutes in length, separated by short breaks (5 minutes). After four "pomodoros", take a longer break (15-30 minutes).`,
		Keywords: []string{"pomodoro", "technique", "study", "focus", "time", "management", "break"},
	},
	{
		ID:       "study-2",
		Category: "Study Tips",
		Question: "How can I memorize vocabulary faster?",
		Answer:   "Effective methods include: 1) Spaced Repetition (reviewing words at increasing intervals), 2) Mnemonic devices (associating words with images or stories), and 3) Active Recall (testing yourself instead of just reading). EduAssist can help quiz you on these!",
		Keywords: []string{"memorize", "memory", "vocabulary", "words", "language", "learn"},
	},
	{
		ID:       "study-3",
		Category: "Study Tips",
		Question: "How do I structure an essay?",
		Answer:   "A standard essay structure includes: 1) Introduction (Hook + Thesis Statement), 2) Body Paragraphs (Topic Sentence + Evidence + Analysis), and 3) Conclusion (Restate Thesis + Summary of Main Points + Final Thought).",
		Keywords: []string{"essay", "structure", "write", "writing", "paper", "thesis"},
	},
	{
		ID:       "study-4",
		Category: "Study Tips",
		Question: "What is the Feynman Technique?",
		Answer:   "The Feynman Technique involves four steps to learn a concept: 1) Choose a concept, 2) Teach it to a child (simplify it), 3) Identify gaps in your explanation and review source material, 4) Organize and simplify further. It ensures deep understanding.",
		Keywords: []string{"feynman", "technique", "learn", "understand", "concept", "simplify"},
	},

	// Quick Facts
	{
		ID:       "fact-1",
		Category: "Quick Facts",
		Question: "What is the value of Pi?",
		Answer:   "Pi (π) is approximately 3.14159. It represents the ratio of a circle's circumference to its diameter.",
		Keywords: []string{"pi", "math", "circle", "value", "3.14"},
	},
	{
		ID:       "fact-2",
		Category: "Quick Facts",
		Question: "What are the laws of motion?",
		Answer:   "Newton's three laws of motion are: 1) An object stays at rest or in motion unless acted upon by a force (Inertia). 2) Force equals mass times acceleration (F=ma). 3) For every action, there is an equal and opposite reaction.",
		Keywords: []string{"newton", "laws", "motion", "physics", "force", "gravity"},
	},
}
