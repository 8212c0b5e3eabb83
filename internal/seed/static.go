// ABOUTME: Static fallback data when no OpenAI API key is available.
// ABOUTME: Bilingual talk proposals and sponsors modelled on past PyCon Korea programs.

package seed

import "fmt"

func generateStatic(numSessions, numSponsors int) *GeneratedData {
	return &GeneratedData{
		Sessions: generateStaticSessions(numSessions),
		Sponsors: generateStaticSponsors(numSponsors),
	}
}

var staticSessions = []SessionData{
	{
		TitleKo: "Django ORM 깊게 들여다보기", TitleEn: "A Deep Dive into the Django ORM",
		SummaryKo: "쿼리셋이 SQL이 되기까지의 과정을 살펴봅니다.", SummaryEn: "How a QuerySet becomes SQL.",
		DescriptionKo: "## 개요\n\n쿼리셋의 지연 평가와 `select_related`, `prefetch_related`의 차이를 다룹니다.",
		DescriptionEn: "## Overview\n\nLazy evaluation, `select_related` and `prefetch_related` explained.",
		Categories: []string{"Web"},
		Speaker:    SpeakerData{NicknameKo: "김파이", NicknameEn: "Pie Kim", BiographyKo: "백엔드 개발자입니다.", BiographyEn: "Backend developer."},
	},
	{
		TitleKo: "asyncio로 만드는\\n실시간 채팅 서버", TitleEn: "Building a Realtime\\nChat Server with asyncio",
		SummaryKo: "이벤트 루프의 동작 원리를 채팅 서버 예제로 설명합니다.", SummaryEn: "The event loop, explained through a chat server.",
		DescriptionKo: "태스크, 퓨처, 스트림 API를 차례로 사용해 봅니다.",
		DescriptionEn: "We walk through tasks, futures and the streams API.",
		Categories: []string{"Core Python", "Web"},
		Speaker:    SpeakerData{NicknameKo: "이비동기", NicknameEn: "Async Lee", BiographyKo: "네트워크 프로그래밍을 좋아합니다.", BiographyEn: "Enjoys network programming."},
	},
	{
		TitleKo: "pandas 2.0과 Arrow", TitleEn: "pandas 2.0 and Arrow",
		SummaryKo: "Arrow 백엔드가 바꾸는 데이터 처리 성능.", SummaryEn: "What the Arrow backend changes for performance.",
		DescriptionKo: "| 항목 | 1.x | 2.0 |\n|---|---|---|\n| 문자열 | object | arrow |",
		DescriptionEn: "| Item | 1.x | 2.0 |\n|---|---|---|\n| strings | object | arrow |",
		Categories: []string{"Data Science"},
		Speaker:    SpeakerData{NicknameKo: "박데이터", NicknameEn: "Data Park", BiographyKo: "데이터 엔지니어입니다.", BiographyEn: "Data engineer."},
	},
	{
		TitleKo: "타입 힌트, 어디까지 써봤니?", TitleEn: "How Far Have You Gone with Type Hints?",
		SummaryKo: "Protocol, TypeVar, ParamSpec 실전 사용기.", SummaryEn: "Protocol, TypeVar and ParamSpec in practice.",
		DescriptionKo: "mypy와 pyright를 함께 운영한 경험을 공유합니다.",
		DescriptionEn: "Lessons from running mypy and pyright side by side.",
		Categories: []string{"Core Python"},
		Speaker:    SpeakerData{NicknameKo: "최타입", NicknameEn: "Type Choi", BiographyKo: "정적 분석 도구를 만듭니다.", BiographyEn: "Builds static analysis tools."},
	},
	{
		TitleKo: "파이썬으로 가르치는 첫 프로그래밍", TitleEn: "Teaching First-Time Programmers with Python",
		SummaryKo: "중학생 대상 수업 1년의 기록.", SummaryEn: "A year of teaching middle schoolers.",
		DescriptionKo: "교육 현장에서 겪은 시행착오를 나눕니다.",
		DescriptionEn: "Trial and error from the classroom.",
		Categories: []string{"Education", "Community"},
		Speaker:    SpeakerData{NicknameKo: "정선생", NicknameEn: "Teacher Jung", BiographyKo: "정보 교사입니다.", BiographyEn: "Computer science teacher."},
	},
	{
		TitleKo: "후원사 세션: 대규모 파이썬 서비스 운영기", TitleEn: "Sponsor Session: Running Python at Scale",
		SummaryKo: "수천 대의 서버에서 파이썬을 운영하는 방법.", SummaryEn: "Operating Python across thousands of servers.",
		DescriptionKo: "배포 파이프라인과 관측성 도구를 소개합니다.",
		DescriptionEn: "Our deployment pipeline and observability tooling.",
		Categories: []string{"후원사"},
		Speaker:    SpeakerData{NicknameKo: "한운영", NicknameEn: "Ops Han", BiographyKo: "SRE 팀 리드입니다.", BiographyEn: "SRE team lead."},
	},
}

var staticSponsors = []SponsorData{
	{Name: "Snake Cloud", Tier: "Keystone", Description: "Managed Python runtimes for every team.", URL: "https://snakecloud.example.com"},
	{Name: "Gwangju Data Lab", Tier: "Diamond", Description: "Open data platforms for public institutions.", URL: "https://gdl.example.com"},
	{Name: "Hangul Labs", Tier: "Platinum", Description: "Korean language processing toolkits.", URL: "https://hangul.example.com"},
	{Name: "Seoul Robotics Works", Tier: "Gold", Description: "Robot control software written in Python.", URL: "https://srw.example.com"},
	{Name: "Busan Bytes", Tier: "Startup", Description: "A tiny team shipping developer tools.", URL: "https://busanbytes.example.com"},
}

func generateStaticSessions(count int) []SessionData {
	out := make([]SessionData, 0, count)
	for i := 0; i < count; i++ {
		s := staticSessions[i%len(staticSessions)]
		if round := i / len(staticSessions); round > 0 {
			s.TitleKo = fmt.Sprintf("%s (%d)", s.TitleKo, round+1)
			s.TitleEn = fmt.Sprintf("%s (%d)", s.TitleEn, round+1)
		}
		s.Categories = append([]string(nil), s.Categories...)
		out = append(out, s)
	}
	return out
}

func generateStaticSponsors(count int) []SponsorData {
	out := make([]SponsorData, 0, count)
	for i := 0; i < count; i++ {
		s := staticSponsors[i%len(staticSponsors)]
		if round := i / len(staticSponsors); round > 0 {
			s.Name = fmt.Sprintf("%s %d", s.Name, round+1)
		}
		out = append(out, s)
	}
	return out
}
