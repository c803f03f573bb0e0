package content

// Category 笔记类型
type Category string

const (
	Motivational Category = "励志"
	Emotional    Category = "情感"
	Food         Category = "美食"
	Beauty       Category = "美妆"
	Travel       Category = "旅行"
	Daily        Category = "日常"
)

// Categories 全部笔记类型
var Categories = []Category{Motivational, Emotional, Food, Beauty, Travel, Daily}

type keywordRule struct {
	category Category
	keywords []string
}

// 文件名关键词，按顺序匹配，第一个命中的类型生效。
// 穿搭类没有独立模板，归入日常。
var keywordRules = []keywordRule{
	{Motivational, []string{"励志", "正能", "金句", "文案", "文字", "海报", "治愈", "成长"}},
	{Emotional, []string{"情感", "扎心", "温柔", "深夜", "心情", "感悟"}},
	{Food, []string{"美食", "食物", "吃", "餐厅", "饮料", "甜品", "烹饪", "菜"}},
	{Beauty, []string{"护肤", "化妆", "口红", "眼影", "美妆", "妆容", "美容"}},
	{Travel, []string{"旅行", "风景", "景点", "拍照", "打卡", "城市", "建筑"}},
	{Daily, []string{"穿搭", "衣服", "时尚", "ootd", "服装", "搭配"}},
}

type defaults struct {
	theme string
	mood  string
}

var categoryDefaults = map[Category]defaults{
	Motivational: {theme: "自我成长", mood: "治愈"},
	Emotional:    {theme: "情感共鸣", mood: "温暖"},
	Food:         {theme: "美食探店", mood: "满足"},
	Beauty:       {theme: "美丽分享", mood: "自信"},
	Travel:       {theme: "旅行见闻", mood: "愉悦"},
	Daily:        {theme: "生活记录", mood: "平静"},
}

var titleTemplates = map[Category][]string{
	Motivational: {
		"被这段话治愈了✨｜{theme}",
		"人生建议：{advice}",
		"这段话让我瞬间清醒💫",
		"送给每一个正在努力的你🌟",
		"今天看到的最有力量的文字",
		"{theme}｜{emotion}到爆！",
		"封神级的{theme}文案！🔥",
		"建议收藏｜{theme}必读",
		"2024最火的{theme}金句📝",
		"看完你会来谢我的{theme}✨",
	},
	Emotional: {
		"深夜看到这段话，瞬间破防😭",
		"原来{topic}是这样的",
		"成年人最该明白的道理",
		"看完这段话，我释怀了",
		"这段话写到我心坎里了💔",
		"如果你也在经历{topic}...",
		"终于有人把{topic}说清楚了",
		"{topic} | 每个人都该看看",
		"关于{topic}，我有话要说",
		"这篇{topic}文章，看完沉默了",
	},
	Food: {
		"在{location}吃到扶墙出🔥",
		"{dish}天花板被我找到了！",
		"被问爆的{dish}地址来啦📍",
		"人均{dish}吃到撑！",
		"这家{dish}让我惊艳了✨",
		"碳水控必冲的{dish}！",
		"{dish}脑袋给我冲🏃",
		"本地人强推的{dish}！",
		"这条{location}{dish}攻略太全了",
		"吃完这顿{dish}，我哭了😭",
	},
	Beauty: {
		"新手友好的{dproduct}推荐！",
		"{dproduct}智商税还是真香？",
		"均价不过百的{dproduct}绝绝子！",
		"这个{dproduct}让我换头了✨",
		"{dproduct}红黑榜｜真实测评",
		"学生党{dproduct}合集来啦！",
		"无限回购的{dproduct}们💄",
		"新手入门{dproduct}看这篇！",
		"{dproduct}的正确打开方式",
		"这个{dproduct}我愿称之为神！",
	},
	Travel: {
		"最适合短途游的{location}！",
		"{location}两日游攻略🗺️",
		"在{location}拍出刷爆朋友圈的照片📸",
		"{location}本地人带路｜不踩雷",
		"{location}绝美机位大公开！",
		"去{location}前一定要看这篇！",
		"{location}自由行攻略｜全干货",
		"这个{location}冷门但绝美🌿",
		"{location}周末游｜超详细攻略",
		"被问爆的{location}来啦！",
	},
	Daily: {
		"打工人{topic}日常Plog✨",
		"提升幸福感的{topic}好物",
		"女生必知的{topic}小知识",
		"后悔没早点知道的{topic}！",
		"{topic}入门级教程｜超详细",
		"关于{topic}的一切都在这里",
		"新手小白也能学会的{topic}！",
		"{topic}攻略｜建议收藏",
		"{topic}让我生活更美好💫",
		"分享我的{topic}小技巧✨",
	},
}

// 美妆、旅行没有专门的开头结尾，使用日常
var intros = map[Category][]string{
	Motivational: {
		"今天看到这句话，真的被戳中了💫",
		"最近一直在思考这个问题🤔",
		"想要分享一个很棒的发现✨",
		"这段话送给自己，也送给你们🌟",
		"允许我分享这段很有力量的话🙏",
	},
	Emotional: {
		"最近感悟很深，想和大家聊聊💭",
		"不知道你们有没有同感...",
		"今天想认真的说几句心里话",
		"这个{topic}的话题，我想聊一聊",
		"关于{topic}，我有话想说",
	},
	Food: {
		"终于找到机会分享这家宝藏店铺了！",
		"这家{dish}真的绝了，必须安利给你们！",
		"干饭人魂牵梦绕的{dish}！",
		"{location}美食探店第N弹来了！",
		"作为一个吃货，我必须说...",
	},
	Daily: {
		"日常分享时间到啦✨",
		"今天想记录一下最近的{topic}...",
		"好久没发日常了，浅浅更新一下",
		"{topic}日记｜平淡生活的闪光时刻",
		"分享几个我的{topic}小习惯🏃",
	},
}

var outros = map[Category][]string{
	Motivational: {
		"\n\n希望这段话能给你带来力量💪",
		"\n\n一起加油，成为更好的自己✨",
		"\n\n共勉🙏",
		"\n\n愿你我都能被这个世界温柔以待🌈",
	},
	Emotional: {
		"\n\n愿我们都能被温柔以待💕",
		"\n\n如果你也有同感，欢迎评论区聊聊",
		"\n\n愿你一切安好🙏",
		"\n\n共勉💫",
	},
	Food: {
		"\n\n📍地址：{location}",
		"\n\n💰人均：XXX元",
		"\n\n👭推荐指数：⭐⭐⭐⭐⭐",
		"\n\n码住这篇，{dish}吃到爽！🍽️",
	},
	Daily: {
		"\n\n以上就是今天的分享啦✨",
		"\n\n你们有什么{topic}心得吗？评论区交流呀💬",
		"\n\n喜欢的记得点赞收藏哦❤️",
		"\n\n我们下次再见👋",
	},
}

// 正文主体模板，{saying} 从 sayings 中随机选取
var bodyTemplates = map[Category][]string{
	Motivational: {
		`
{theme}这件事，真的需要慢慢来。

不必急于求成，也不必与他人比较。
每个人的花期不同，不必焦虑有人提前盛开。

记住：
- 你的努力，时间看得见
- 自律给你自由
- 慢慢来，比较快

愿你在{theme}的路上，永远保持热爱和勇气。💪
`,
		`
最近很喜欢一句话：{saying}。

{mood}的时刻值得被记录。

{theme}教会我的几件事：
1. 过程比结果更重要
2. 享受当下
3. 相信自己

一起加油吧！✨🌟
`,
	},
	Emotional: {
		`{theme}这件事，每个人都有不同的感受。

有时候，一段话就能戳中内心最柔软的地方。

愿我们都能在{mood}中找到力量。

无论你现在处于什么状态，都请记得：
{saying}

#情感共鸣 #治愈系 #温暖时刻`,
	},
	Food: {
		`今天必须分享一家让我惊艳的{theme}！

{mood}感直接拉满！😍

🍽️ 菜品评价：
- 口味：⭐⭐⭐⭐⭐
- 环境：⭐⭐⭐⭐
- 服务：⭐⭐⭐⭐

总的来说，是一次非常{mood}的用餐体验！

下次还会再来！💯`,
	},
	Daily: {
		`分享一下最近的{theme}碎片✨

每天都在努力生活，虽然平淡但很充实。

一些小感悟：
{saying}

希望你们也能在{mood}中找到属于自己的小确幸💫`,
	},
}

var sayings = map[Category][]string{
	Motivational: {"慢慢来，比较快", "允许自己慢一点", "你已经很棒了"},
	Emotional:    {"你值得被爱", "你已经很努力了", "一切都会好起来的"},
	Daily:        {"生活就是要善于发现小美好", "平凡的日子里也有闪光时刻", "珍惜当下的每一刻"},
}

var tagPools = map[Category][]string{
	Motivational: {"励志", "正能量", "人生感悟", "自我成长", "治愈系", "成长", "生活感悟", "金句", "文案", "治愈"},
	Emotional:    {"情感", "治愈系", "温暖", "情感文案", "深夜文案", "扎心", "共情", "情感语录", "人间清醒"},
	Food:         {"美食", "美食探店", "干饭人", "美食推荐", "美食日常", "吃货", "探店", "网红店", "美食分享"},
	Beauty:       {"美妆", "化妆", "护肤", "化妆品", "彩妆", "新手化妆", "护肤日常", "变美", "好物推荐"},
	Travel:       {"旅行", "旅游", "旅行攻略", "周末游", "短途旅行", "拍照圣地", "小众旅行", "出行攻略"},
	Daily:        {"日常", "plog", "生活碎片", "记录生活", "OOTD", "好物分享", "购物分享", "生活日常"},
}

// GenericTags 每个类型都会混入的通用标签
var GenericTags = []string{"小红书", "笔记", "分享", "推荐"}

// 模板占位符的固定取值，{theme} {topic} {emotion} {mood} 按分类结果填充
var fixedReplacements = map[string]string{
	"advice":   "活好自己",
	"location": "本地",
	"dish":     "美食",
	"dproduct": "好物",
}

// lookup 取类型对应的模板，没有时回退到日常
func lookup(table map[Category][]string, c Category) []string {
	if v, ok := table[c]; ok && len(v) > 0 {
		return v
	}
	return table[Daily]
}
