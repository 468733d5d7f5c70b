package sentiment

// Valence lexicon in the VADER style: human-rated word polarities on a
// [-4, 4] scale. A compact general-purpose subset tuned for discussion-thread
// language; scoring normalizes the summed valences into [-1, 1].
var lexicon = map[string]float64{
	// positive
	"good": 1.9, "great": 3.1, "greatest": 3.2, "awesome": 3.1, "amazing": 2.8,
	"excellent": 2.7, "fantastic": 2.6, "wonderful": 2.7, "best": 3.2,
	"love": 3.2, "loved": 2.9, "loves": 2.7, "like": 1.5, "liked": 1.8,
	"likes": 1.6, "happy": 2.7, "happiness": 2.6, "glad": 2.0, "joy": 2.8,
	"win": 2.8, "winner": 2.8, "winning": 2.4, "won": 2.7, "success": 2.7,
	"successful": 2.6, "perfect": 2.7, "nice": 1.8, "better": 1.9,
	"improve": 1.9, "improved": 2.1, "improvement": 1.7, "helpful": 1.9,
	"help": 1.7, "helped": 1.6, "helps": 1.6, "thank": 1.9, "thanks": 1.9,
	"thankful": 2.4, "grateful": 2.8, "appreciate": 2.0, "appreciated": 2.3,
	"hope": 1.9, "hopeful": 2.3, "hopefully": 1.7, "excited": 2.4,
	"exciting": 2.2, "enjoy": 2.2, "enjoyed": 2.3, "fun": 2.3, "funny": 1.9,
	"beautiful": 2.9, "impressive": 2.3, "impressed": 2.2, "brilliant": 2.8,
	"solid": 1.5, "strong": 2.3, "support": 1.7, "supported": 1.6,
	"supportive": 2.2, "recommend": 1.6, "recommended": 1.7, "worth": 1.3,
	"useful": 1.9, "valuable": 2.1, "positive": 2.1, "promising": 1.8,
	"progress": 1.8, "opportunity": 1.7, "opportunities": 1.6, "benefit": 1.9,
	"benefits": 1.7, "cheap": 1.0, "affordable": 1.5, "free": 1.8,
	"safe": 1.8, "safer": 1.9, "reliable": 2.0, "easy": 1.6, "easier": 1.6,
	"smart": 1.9, "clever": 1.9, "proud": 2.1, "blessed": 2.9, "peace": 2.5,
	"peaceful": 2.4, "fair": 1.6, "honest": 2.2, "trust": 2.1, "trusted": 2.3,
	"trustworthy": 2.6, "clean": 1.6, "fresh": 1.3, "growth": 1.9,
	"growing": 1.4, "boom": 1.4, "gain": 1.6, "gains": 1.6, "profit": 1.8,
	"profitable": 2.1, "stable": 1.2, "superb": 3.0, "delighted": 2.9,
	"favorite": 2.0, "favourite": 2.0, "congrats": 2.4, "congratulations": 2.9,
	"welcome": 1.9, "wow": 2.8, "yes": 1.7, "agree": 1.5, "agreed": 1.6,

	// negative
	"bad": -2.5, "worse": -2.1, "worst": -3.1, "terrible": -2.1,
	"horrible": -2.5, "awful": -2.0, "hate": -2.7, "hated": -2.6,
	"hates": -1.9, "hating": -2.2, "dislike": -1.6, "angry": -2.3,
	"anger": -2.0, "mad": -2.2, "furious": -2.7, "sad": -2.1, "sadness": -2.1,
	"unhappy": -1.9, "depressed": -2.3, "depressing": -1.9, "cry": -2.2,
	"crying": -2.2, "fail": -2.5, "failed": -2.3, "failure": -2.4,
	"failing": -2.2, "fails": -2.0, "lose": -1.7, "losing": -1.8,
	"loss": -1.3, "losses": -1.5, "lost": -1.3, "problem": -1.7,
	"problems": -1.7, "issue": -1.1, "issues": -1.4, "broken": -1.9,
	"break": -1.4, "breaks": -1.3, "wrong": -2.1, "error": -1.7,
	"errors": -1.9, "bug": -1.4, "bugs": -1.6, "crash": -1.6, "crashed": -1.8,
	"scam": -2.2, "scammed": -2.4, "fraud": -2.8, "corrupt": -2.6,
	"corruption": -2.4, "steal": -2.2, "stolen": -2.2, "theft": -2.3,
	"crime": -2.5, "criminal": -2.4, "dangerous": -2.3, "danger": -2.4,
	"unsafe": -1.9, "risk": -1.1, "risky": -1.4, "fear": -2.2, "afraid": -2.0,
	"scared": -2.0, "scary": -2.2, "worried": -1.6, "worry": -1.6,
	"worrying": -1.8, "anxious": -1.9, "stress": -1.8, "stressful": -2.1,
	"stressed": -1.8, "annoying": -1.7, "annoyed": -1.8, "frustrating": -2.1,
	"frustrated": -2.4, "frustration": -2.1, "disappointed": -2.1,
	"disappointing": -2.2, "disappointment": -2.2, "useless": -1.8,
	"worthless": -2.3, "waste": -1.8, "wasted": -2.2, "expensive": -0.9,
	"overpriced": -1.9, "poor": -2.1, "poverty": -2.5, "unemployed": -1.6,
	"unemployment": -1.8, "debt": -1.7, "inflation": -1.2, "crisis": -2.5,
	"disaster": -2.8, "tragedy": -3.0, "tragic": -2.6, "death": -2.9,
	"dead": -2.7, "die": -2.9, "died": -2.6, "dying": -2.8, "sick": -1.9,
	"disease": -2.0, "pain": -2.1, "painful": -2.3, "hurt": -2.0,
	"hurts": -1.9, "suffering": -2.4, "suffer": -2.3, "war": -2.9,
	"violence": -2.9, "violent": -2.8, "attack": -2.1, "attacked": -2.2,
	"abuse": -3.2, "abusive": -3.1, "dirty": -1.6, "pollution": -1.8,
	"ugly": -2.3, "stupid": -2.4, "dumb": -2.3, "idiot": -2.3,
	"ridiculous": -1.6, "pathetic": -2.4, "disgusting": -2.4, "gross": -1.9,
	"liar": -2.6, "lie": -1.8, "lies": -1.9, "lying": -2.2, "fake": -1.9,
	"ignore": -1.1, "ignored": -1.4, "neglect": -2.0, "neglected": -2.1,
	"unfair": -2.1, "injustice": -2.4, "greed": -2.4, "greedy": -2.2,
	"doubt": -1.0, "doubtful": -1.4, "blame": -1.7, "blamed": -1.8,
	"complain": -1.5, "complaint": -1.4, "complaints": -1.6, "mess": -1.7,
	"chaos": -2.1, "shortage": -1.6, "struggle": -1.9, "struggling": -2.0,
}

// boosters scale the valence of the following lexicon word.
var boosters = map[string]float64{
	"absolutely": 0.293, "amazingly": 0.293, "completely": 0.293,
	"considerably": 0.293, "decidedly": 0.293, "deeply": 0.293,
	"enormously": 0.293, "entirely": 0.293, "especially": 0.293,
	"exceptionally": 0.293, "extremely": 0.293, "fully": 0.293,
	"greatly": 0.293, "highly": 0.293, "hugely": 0.293, "incredibly": 0.293,
	"majorly": 0.293, "particularly": 0.293, "purely": 0.293, "quite": 0.293,
	"really": 0.293, "remarkably": 0.293, "so": 0.293, "substantially": 0.293,
	"thoroughly": 0.293, "totally": 0.293, "tremendously": 0.293,
	"utterly": 0.293, "very": 0.293,

	"almost": -0.293, "barely": -0.293, "hardly": -0.293, "kind of": -0.293,
	"kinda": -0.293, "less": -0.293, "little": -0.293, "marginally": -0.293,
	"occasionally": -0.293, "partly": -0.293, "scarcely": -0.293,
	"slightly": -0.293, "somewhat": -0.293, "sort of": -0.293, "sorta": -0.293,
}

// negations flip the valence of a word appearing within the look-back window.
var negations = map[string]struct{}{
	"not": {}, "isnt": {}, "isn't": {}, "arent": {}, "aren't": {},
	"wasnt": {}, "wasn't": {}, "werent": {}, "weren't": {}, "dont": {},
	"don't": {}, "doesnt": {}, "doesn't": {}, "didnt": {}, "didn't": {},
	"cant": {}, "can't": {}, "cannot": {}, "couldnt": {}, "couldn't": {},
	"wont": {}, "won't": {}, "wouldnt": {}, "wouldn't": {}, "shouldnt": {},
	"shouldn't": {}, "aint": {}, "ain't": {}, "never": {}, "no": {},
	"neither": {}, "nor": {}, "none": {}, "nope": {}, "nothing": {},
	"nowhere": {}, "without": {}, "rarely": {}, "seldom": {}, "despite": {},
}
